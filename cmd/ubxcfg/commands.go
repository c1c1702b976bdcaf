package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ubxcfg/internal/config"
	"github.com/muurk/ubxcfg/internal/deviceconfig"
	"github.com/muurk/ubxcfg/internal/discovery"
	"github.com/muurk/ubxcfg/internal/transport"
	"github.com/muurk/ubxcfg/internal/ubx"
	"github.com/muurk/ubxcfg/internal/ui"
)

// Connection and command flags
var (
	endpoint    string
	baudRate    int
	profileName string

	generation  string
	pollLayer   string
	storeLayers string
	groupWait   time.Duration
	pacing      time.Duration
	chunkSize   int
	outFile     string

	ackTimeout time.Duration
	writeDelay time.Duration

	outputFormat string
	scanTimeout  int

	timeMode    string
	accLimit    float64
	surveyDur   time.Duration
	posType     string
	fixedPos    string
	watchSurvey bool

	msgSet   string
	msgClass string
	msgID    string
	msgRate  int
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVarP(&endpoint, "port", "P", "", "Serial port, tcp:// or ws:// endpoint (overrides profile)")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baudrate", 0, "Serial baud rate (default 38400)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Named receiver profile from the config file")

	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(baseCmd)
	rootCmd.AddCommand(rateCmd)
}

// saveCmd polls the device and writes a transaction file
var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save device configuration to a file",
	Long: `Poll the receiver's entire configuration and save it to a file.

The configuration is read one key group at a time over CFG-VALGET and packed
into a sequence of CFG-VALSET messages forming a single transaction. Loading
the file later applies everything atomically: the device either takes the
whole configuration or none of it.

A group that stays silent is recorded as empty and the run continues; the
result summary lists any groups that timed out.`,
	Example: `  # Save from a local serial port
  ubxcfg save -P /dev/ttyACM0

  # Save an RTK receiver over a TCP bridge, writing flash as well on load
  ubxcfg save -P tcp://192.168.1.42:5760 --generation gen9-rtk --store ram,bbr,flash

  # Slow device: allow 5 seconds per key group
  ubxcfg save -P /dev/ttyACM0 --waittime 5s -o base-station.ubx`,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&generation, "generation", "gen9", "Device generation (gen9, gen9-rtk, gen10)")
	saveCmd.Flags().StringVar(&pollLayer, "layer", "ram", "Storage layer to read (ram, bbr, flash, default)")
	saveCmd.Flags().StringVar(&storeLayers, "store", "all", "Layers the file writes on load (comma list of ram,bbr,flash or all)")
	saveCmd.Flags().DurationVar(&groupWait, "waittime", deviceconfig.DefaultGroupWait, "Wait per key group before giving up")
	saveCmd.Flags().DurationVar(&pacing, "pacing", deviceconfig.DefaultPacing, "Delay between key group polls")
	saveCmd.Flags().IntVar(&chunkSize, "chunk", deviceconfig.DefaultMaxPayload, "Maximum apply message payload in bytes")
	saveCmd.Flags().StringVarP(&outFile, "outfile", "o", "", "Output file (default ubxconfig-<timestamp>.ubx)")
}

func runSave(cmd *cobra.Command, args []string) error {
	class, err := deviceconfig.ParseDeviceClass(generation)
	if err != nil {
		return err
	}
	layer, err := parseLayer(pollLayer)
	if err != nil {
		return err
	}
	mask, err := parseStoreMask(storeLayers)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = fmt.Sprintf("ubxconfig-%s.ubx", time.Now().Format("20060102150405"))
	}

	ep, baud, err := resolveEndpoint()
	if err != nil {
		return err
	}

	stream, err := transport.Open(ep, transport.Options{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ep, err)
	}
	defer stream.Close()

	fmt.Println(ui.NewHeader("Configuration Save", [][2]string{
		{"Endpoint", describeEndpoint(ep, baud)},
		{"Generation", string(class)},
		{"Layer", pollLayer},
		{"File", path},
	}).Render())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	groups := deviceconfig.Groups(class)
	tracker := ui.NewTracker(os.Stdout, "Polling key groups", len(groups))

	saver := deviceconfig.NewSaver(stream, deviceconfig.SaverOptions{
		Class:     class,
		Layer:     layer,
		GroupWait: groupWait,
		Pacing:    pacing,
		Progress: func(done, total int, group deviceconfig.KeyGroup, keys int) {
			tracker.Update(done, fmt.Sprintf("%s (%d keys)", group.Name, keys))
		},
	})

	snapshot, report, err := saver.Run(ctx)
	tracker.Finish()
	fmt.Println()
	if err != nil {
		fmt.Println(ui.RenderResultBox(false, "Save failed", [][2]string{
			{"Collected", fmt.Sprintf("%d keys", report.TotalKeys)},
			{"Error", err.Error()},
		}))
		fmt.Println(ui.RenderTroubleshooting(deviceconfig.GetTroubleshootingHint(err)))
		return err
	}

	msgs, err := deviceconfig.Assemble(snapshot, mask, chunkSize)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("device returned no configuration entries; nothing to save")
	}
	if err := deviceconfig.SaveTransactionFile(path, msgs); err != nil {
		return err
	}

	details := [][2]string{
		{"Entries", fmt.Sprintf("%d", report.TotalKeys)},
		{"Messages", fmt.Sprintf("%d", len(msgs))},
		{"File", path},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
	}
	if warn := report.CoverageWarning(); warn != nil {
		details = append(details, [2]string{"Warning", warn.Error()})
		fmt.Println(ui.RenderResultBox(true, "Configuration saved (incomplete)", details))
		fmt.Println(ui.RenderTroubleshooting(deviceconfig.GetTroubleshootingHint(warn)))
	} else {
		fmt.Println(ui.RenderResultBox(true, "Configuration saved", details))
	}

	touchProfile(ep)
	return nil
}

// loadCmd replays a transaction file onto the device
var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a saved configuration onto a device",
	Long: `Replay a saved configuration file onto the receiver.

Messages are sent strictly one at a time, each waiting for the device's
acknowledgement. The device treats the whole file as a single transaction:
if any message is rejected or unanswered, the run stops and the device
discards the partial transaction, leaving its configuration untouched.`,
	Example: `  # Load onto a local serial port
  ubxcfg load backup.ubx -P /dev/ttyACM0

  # Slow link: wait longer for each acknowledgement
  ubxcfg load backup.ubx -P tcp://192.168.1.42:5760 --ack-timeout 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().DurationVar(&ackTimeout, "ack-timeout", deviceconfig.DefaultAckTimeout, "Wait per message acknowledgement")
	loadCmd.Flags().DurationVar(&writeDelay, "write-delay", deviceconfig.DefaultWriteDelay, "Minimum gap between message writes")
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]

	msgs, err := deviceconfig.LoadTransactionFile(path)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("%s contains no apply messages", path)
	}

	ep, baud, err := resolveEndpoint()
	if err != nil {
		return err
	}

	stream, err := transport.Open(ep, transport.Options{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ep, err)
	}
	defer stream.Close()

	fmt.Println(ui.NewHeader("Configuration Load", [][2]string{
		{"Endpoint", describeEndpoint(ep, baud)},
		{"File", path},
		{"Messages", fmt.Sprintf("%d", len(msgs))},
	}).Render())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tracker := ui.NewTracker(os.Stdout, "Applying configuration", len(msgs))
	loader := deviceconfig.NewLoader(stream, deviceconfig.LoaderOptions{
		AckTimeout: ackTimeout,
		WriteDelay: writeDelay,
		Progress: func(done, total int) {
			tracker.Update(done, "")
		},
	})

	report, err := loader.Run(ctx, msgs)
	tracker.Finish()
	fmt.Println()
	if err != nil {
		details := [][2]string{
			{"Applied", fmt.Sprintf("%d of %d", report.Acked, report.Messages)},
			{"Error", err.Error()},
		}
		if f := report.FirstFailure; f != nil {
			details = append(details, [2]string{"Failed at", fmt.Sprintf("message %d (%s)", f.Index+1, f.State)})
		}
		fmt.Println(ui.RenderResultBox(false, "Load failed", details))
		fmt.Println(ui.RenderTroubleshooting(deviceconfig.GetTroubleshootingHint(err)))
		return err
	}

	fmt.Println(ui.RenderResultBox(true, "Configuration applied", [][2]string{
		{"Messages", fmt.Sprintf("%d", report.Messages)},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
	}))

	touchProfile(ep)
	return nil
}

// showCmd inspects a transaction file without touching any device
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the contents of a saved configuration file",
	Long: `Display the contents of a saved configuration file.

This command decodes the file offline and shows the apply messages, the
configuration keys they carry, and the storage layers a load would write.
No device connection is needed.`,
	Example: `  # Per-group summary
  ubxcfg show backup.ubx

  # Every key with its raw value
  ubxcfg show backup.ubx --format detailed

  # JSON output for scripting
  ubxcfg show backup.ubx --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "compact", "Output format (compact, detailed, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	msgs, err := deviceconfig.LoadTransactionFile(args[0])
	if err != nil {
		return err
	}

	info := deviceconfig.Inspect(msgs)

	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "detailed":
		fmt.Println(info.FormatDetailed())
	case "compact":
		fallthrough
	default:
		fmt.Println(info.FormatCompact())
	}

	return nil
}

// scanCmd discovers serial bridges on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for serial bridges on the network",
	Long: `Scan for serial-over-network bridges using mDNS/DNS-SD discovery.

Receivers plugged into a bridge can be reached with the tcp:// or ws://
endpoints this command prints.`,
	Example: `  # Scan for 10 seconds (default)
  ubxcfg scan

  # Quick 3-second scan
  ubxcfg scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for serial bridges (timeout: %ds)...\n\n", scanTimeout)

	bridges, err := discovery.ScanForBridges(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println("No bridges found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the bridge is powered on and on the same network")
		fmt.Println("  - Check that your firewall allows mDNS (UDP port 5353)")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use -P to specify the endpoint manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d bridge(s):\n\n", len(bridges))

	for i, bridge := range bridges {
		fmt.Printf("%d. %s\n", i+1, bridge.Name)
		fmt.Printf("   Endpoint: %s\n", bridge.Endpoint())
		if dev := bridge.GetMetadata("device"); dev != "" {
			fmt.Printf("   Device:   %s\n", dev)
		}
		if baud := bridge.GetMetadata("baud"); baud != "" {
			fmt.Printf("   Baud:     %s\n", baud)
		}
		fmt.Println()
	}

	fmt.Println("Use 'ubxcfg save -P <endpoint>' to save from a bridge")

	return nil
}

// baseCmd configures RTK base station operation
var baseCmd = &cobra.Command{
	Use:   "base",
	Short: "Configure the receiver as an RTK base station",
	Long: `Configure an RTK-capable receiver as a base station.

In survey-in mode the receiver averages its own position until the accuracy
limit is reached, then starts transmitting RTCM3 corrections. In fixed mode
the reference position is supplied on the command line. Disabled mode turns
base station operation off and silences the correction output.

The timing mode is written to RAM only; save the configuration afterwards
if it should survive a power cycle.`,
	Example: `  # Survey in to 1 m accuracy over at least 5 minutes
  ubxcfg base -P /dev/ttyACM0 --timemode survey-in --acclimit 100 --duration 5m

  # Fixed position from a known reference mark (lat, lon, height in cm)
  ubxcfg base -P /dev/ttyACM0 --timemode fixed --postype llh --fixedpos "37.23345,-115.80542,164200"

  # Turn base station operation off
  ubxcfg base -P /dev/ttyACM0 --timemode disabled`,
	RunE: runBase,
}

func init() {
	baseCmd.Flags().StringVar(&timeMode, "timemode", "survey-in", "Timing mode (survey-in, fixed, disabled)")
	baseCmd.Flags().Float64Var(&accLimit, "acclimit", deviceconfig.DefaultSurveyAccLimitCM, "Accuracy limit in cm (survey limit or fixed position accuracy)")
	baseCmd.Flags().DurationVar(&surveyDur, "duration", deviceconfig.DefaultSurveyDuration, "Minimum survey-in observation time")
	baseCmd.Flags().StringVar(&posType, "postype", "llh", "Fixed position format (llh, ecef)")
	baseCmd.Flags().StringVar(&fixedPos, "fixedpos", "", "Fixed position: lat,lon,height-cm (llh) or x,y,z in cm (ecef)")
	baseCmd.Flags().BoolVar(&watchSurvey, "watch", true, "Watch survey-in progress until it converges")
	baseCmd.Flags().DurationVar(&ackTimeout, "ack-timeout", deviceconfig.DefaultAckTimeout, "Wait per message acknowledgement")
	baseCmd.Flags().DurationVar(&writeDelay, "write-delay", deviceconfig.DefaultWriteDelay, "Minimum gap between message writes")
}

func runBase(cmd *cobra.Command, args []string) error {
	cfg, err := buildBaseConfig()
	if err != nil {
		return err
	}

	entries, err := cfg.Entries()
	if err != nil {
		return err
	}

	ep, baud, err := resolveEndpoint()
	if err != nil {
		return err
	}

	stream, err := transport.Open(ep, transport.Options{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ep, err)
	}
	defer stream.Close()

	headerRows := [][2]string{
		{"Endpoint", describeEndpoint(ep, baud)},
		{"Mode", cfg.Mode.String()},
	}
	switch cfg.Mode {
	case deviceconfig.TimeModeSurveyIn:
		headerRows = append(headerRows,
			[2]string{"Accuracy limit", fmt.Sprintf("%.0f cm", cfg.AccLimitCM)},
			[2]string{"Min duration", cfg.SurveyDuration.String()},
		)
	case deviceconfig.TimeModeFixed:
		headerRows = append(headerRows,
			[2]string{"Position", fixedPos},
			[2]string{"Accuracy", fmt.Sprintf("%.0f cm", cfg.AccLimitCM)},
		)
	}
	fmt.Println(ui.NewHeader("Base Station Setup", headerRows).Render())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snapshot := deviceconfig.NewSnapshot()
	for _, e := range entries {
		snapshot.Put(e)
	}
	msgs, err := deviceconfig.Assemble(snapshot, ubx.MaskRAM, deviceconfig.DefaultMaxPayload)
	if err != nil {
		return err
	}

	opts := deviceconfig.LoaderOptions{AckTimeout: ackTimeout, WriteDelay: writeDelay}
	loader := deviceconfig.NewLoader(stream, opts)
	if _, err := loader.Run(ctx, msgs); err != nil {
		fmt.Println(ui.RenderResultBox(false, "Base station setup failed", [][2]string{
			{"Error", err.Error()},
		}))
		fmt.Println(ui.RenderTroubleshooting(deviceconfig.GetTroubleshootingHint(err)))
		return err
	}

	// Disabling base mode silences the correction output; the other modes
	// turn it on.
	var outRate byte = 1
	if cfg.Mode == deviceconfig.TimeModeDisabled {
		outRate = 0
	}
	setter := deviceconfig.NewRateSetter(stream, opts)
	if _, err := setter.Run(ctx, cfg.OutputRates(), outRate); err != nil {
		fmt.Println(ui.RenderResultBox(false, "Correction output setup failed", [][2]string{
			{"Error", err.Error()},
		}))
		fmt.Println(ui.RenderTroubleshooting(deviceconfig.GetTroubleshootingHint(err)))
		return err
	}

	if cfg.Mode == deviceconfig.TimeModeSurveyIn && watchSurvey {
		return watchSurveyIn(ctx, stream, cfg)
	}

	fmt.Println(ui.RenderResultBox(true, "Base station configured", [][2]string{
		{"Mode", cfg.Mode.String()},
	}))
	touchProfile(ep)
	return nil
}

// watchSurveyIn blocks until the survey converges, printing progress lines.
func watchSurveyIn(ctx context.Context, stream transport.Stream, cfg deviceconfig.BaseConfig) error {
	// The receiver needs at least the minimum duration; give it twice that
	// plus a margin before giving up on the watch.
	deadline := time.Now().Add(2*cfg.SurveyDuration + 30*time.Second)

	fmt.Println("Survey in progress (Ctrl-C detaches; the receiver keeps surveying)")
	status, err := deviceconfig.MonitorSurveyIn(ctx, stream, deadline, func(s deviceconfig.SurveyStatus) {
		fmt.Printf("\r  elapsed %-8s accuracy %8.2f cm  observations %d   ",
			s.Elapsed, s.MeanAccCM, s.Observations)
	})
	fmt.Println()
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("Detached; survey continues on the receiver.")
			return nil
		}
		fmt.Println(ui.RenderResultBox(false, "Survey-in did not converge", [][2]string{
			{"Elapsed", status.Elapsed.String()},
			{"Accuracy", fmt.Sprintf("%.2f cm", status.MeanAccCM)},
			{"Error", err.Error()},
		}))
		return err
	}

	fmt.Println(ui.RenderResultBox(true, "Survey-in complete", [][2]string{
		{"Elapsed", status.Elapsed.String()},
		{"Accuracy", fmt.Sprintf("%.2f cm", status.MeanAccCM)},
		{"Observations", fmt.Sprintf("%d", status.Observations)},
	}))
	return nil
}

// buildBaseConfig assembles a BaseConfig from the command line flags.
func buildBaseConfig() (deviceconfig.BaseConfig, error) {
	var cfg deviceconfig.BaseConfig

	mode, err := deviceconfig.ParseTimeMode(timeMode)
	if err != nil {
		return cfg, err
	}
	cfg.Mode = mode
	cfg.AccLimitCM = accLimit
	cfg.SurveyDuration = surveyDur

	switch strings.ToLower(posType) {
	case "llh":
		cfg.PosType = deviceconfig.PositionLLH
	case "ecef":
		cfg.PosType = deviceconfig.PositionECEF
	default:
		return cfg, fmt.Errorf("unknown position type %q (supported: llh, ecef)", posType)
	}

	if mode == deviceconfig.TimeModeFixed {
		parts := strings.Split(fixedPos, ",")
		if len(parts) != 3 {
			return cfg, fmt.Errorf("--fixedpos requires three comma-separated values")
		}
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return cfg, fmt.Errorf("invalid position component %q: %w", p, err)
			}
			cfg.Position[i] = v
		}
	}
	return cfg, nil
}

// rateCmd sets broadcast message output rates
var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Set broadcast message output rates",
	Long: `Set the per-epoch output rate of broadcast messages on every port.

Messages are selected either by preset set name or as a single class/id
pair. Rate 0 disables a message; rate N outputs it every Nth navigation
epoch. Changes are written to RAM only.`,
	Example: `  # Quiet a chatty receiver down to the minimum NMEA set
  ubxcfg rate -P /dev/ttyACM0 --set allnmea --rate 0
  ubxcfg rate -P /dev/ttyACM0 --set minnmea --rate 1

  # Enable NAV-PVT every epoch
  ubxcfg rate -P /dev/ttyACM0 --class 0x01 --id 0x07 --rate 1`,
	RunE: runRate,
}

func init() {
	rateCmd.Flags().StringVar(&msgSet, "set", "", "Message set preset (allnmea, minnmea, allubx, minubx)")
	rateCmd.Flags().StringVar(&msgClass, "class", "", "Message class as hex (e.g. 0xF0)")
	rateCmd.Flags().StringVar(&msgID, "id", "", "Message id as hex (e.g. 0x00)")
	rateCmd.Flags().IntVar(&msgRate, "rate", 1, "Output rate per navigation epoch (0 disables)")
	rateCmd.Flags().DurationVar(&ackTimeout, "ack-timeout", deviceconfig.DefaultAckTimeout, "Wait per message acknowledgement")
	rateCmd.Flags().DurationVar(&writeDelay, "write-delay", deviceconfig.DefaultWriteDelay, "Minimum gap between message writes")
}

func runRate(cmd *cobra.Command, args []string) error {
	msgs, err := selectRateMessages()
	if err != nil {
		return err
	}
	if msgRate < 0 || msgRate > 255 {
		return fmt.Errorf("rate %d out of range (0-255)", msgRate)
	}

	ep, baud, err := resolveEndpoint()
	if err != nil {
		return err
	}

	stream, err := transport.Open(ep, transport.Options{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ep, err)
	}
	defer stream.Close()

	fmt.Println(ui.NewHeader("Message Rates", [][2]string{
		{"Endpoint", describeEndpoint(ep, baud)},
		{"Messages", fmt.Sprintf("%d", len(msgs))},
		{"Rate", fmt.Sprintf("%d", msgRate)},
	}).Render())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tracker := ui.NewTracker(os.Stdout, "Setting message rates", len(msgs))
	setter := deviceconfig.NewRateSetter(stream, deviceconfig.LoaderOptions{
		AckTimeout: ackTimeout,
		WriteDelay: writeDelay,
		Progress: func(done, total int) {
			tracker.Update(done, "")
		},
	})

	report, err := setter.Run(ctx, msgs, byte(msgRate))
	tracker.Finish()
	fmt.Println()
	if err != nil {
		details := [][2]string{
			{"Applied", fmt.Sprintf("%d of %d", report.Acked, report.Messages)},
			{"Error", err.Error()},
		}
		if f := report.FirstFailure; f != nil {
			details = append(details, [2]string{"Failed at", f.Identity})
		}
		fmt.Println(ui.RenderResultBox(false, "Rate change failed", details))
		fmt.Println(ui.RenderTroubleshooting(deviceconfig.GetTroubleshootingHint(err)))
		return err
	}

	fmt.Println(ui.RenderResultBox(true, "Message rates set", [][2]string{
		{"Messages", fmt.Sprintf("%d", report.Messages)},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
	}))

	touchProfile(ep)
	return nil
}

// selectRateMessages resolves the --set preset or the --class/--id pair.
func selectRateMessages() ([]deviceconfig.MessageRate, error) {
	if msgSet != "" {
		if msgClass != "" || msgID != "" {
			return nil, fmt.Errorf("--set and --class/--id are mutually exclusive")
		}
		return deviceconfig.ParseMessageSet(msgSet)
	}
	if msgClass == "" || msgID == "" {
		return nil, fmt.Errorf("select messages with --set or with both --class and --id")
	}

	cls, err := strconv.ParseUint(msgClass, 0, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid message class %q: %w", msgClass, err)
	}
	id, err := strconv.ParseUint(msgID, 0, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", msgID, err)
	}
	return []deviceconfig.MessageRate{{Class: byte(cls), ID: byte(id)}}, nil
}

// resolveEndpoint determines the endpoint and baud rate from flags, the named
// profile, or the default profile, in that order.
func resolveEndpoint() (string, int, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return "", 0, err
	}

	ep := endpoint
	baud := baudRate

	var profile *config.Profile
	if profileName != "" {
		profile = registry.GetProfile(profileName)
		if profile == nil {
			return "", 0, fmt.Errorf("profile %q not found in config file", profileName)
		}
	} else if ep == "" {
		profile = registry.DefaultProfile()
	}

	if profile != nil {
		if ep == "" {
			ep = profile.Endpoint
		}
		if baud == 0 {
			baud = profile.BaudRate
		}
	}
	if baud == 0 && registry.Preferences != nil {
		baud = registry.Preferences.DefaultBaudRate
	}

	if ep == "" {
		return "", 0, fmt.Errorf("no endpoint: pass -P or configure a profile")
	}
	return ep, baud, nil
}

// touchProfile records the endpoint against the active profile, if any.
// Registry write failures are not worth failing a finished run over.
func touchProfile(ep string) {
	if profileName == "" {
		return
	}
	registry, err := config.LoadRegistry()
	if err != nil {
		return
	}
	registry.TouchProfile(profileName, ep)
	_ = registry.Save()
}

// describeEndpoint renders the endpoint with its baud rate when serial.
func describeEndpoint(ep string, baud int) string {
	if strings.Contains(ep, "://") {
		return ep
	}
	return fmt.Sprintf("%s @ %d", ep, baud)
}

// parseLayer maps a layer name to the CFG-VALGET layer field.
func parseLayer(s string) (ubx.Layer, error) {
	switch strings.ToLower(s) {
	case "ram":
		return ubx.LayerRAM, nil
	case "bbr":
		return ubx.LayerBBR, nil
	case "flash":
		return ubx.LayerFlash, nil
	case "default":
		return ubx.LayerDefault, nil
	default:
		return 0, fmt.Errorf("unknown layer %q (supported: ram, bbr, flash, default)", s)
	}
}

// parseStoreMask maps a comma list of layer names to the CFG-VALSET bitmask.
func parseStoreMask(s string) (ubx.LayerMask, error) {
	if strings.EqualFold(s, "all") {
		return ubx.MaskAll, nil
	}

	var mask ubx.LayerMask
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "ram":
			mask |= ubx.MaskRAM
		case "bbr":
			mask |= ubx.MaskBBR
		case "flash":
			mask |= ubx.MaskFlash
		case "":
		default:
			return 0, fmt.Errorf("unknown store layer %q (supported: ram, bbr, flash, all)", part)
		}
	}
	if mask == 0 {
		return 0, fmt.Errorf("no store layers given")
	}
	return mask, nil
}
