// Package deviceconfig implements the configuration snapshot and restore
// engine for u-blox generation 9+ GNSS receivers.
//
// The engine has two halves. The save path polls the device one key group at
// a time over CFG-VALGET, accumulates the responses into a Snapshot, packs
// the snapshot into a sequence of CFG-VALSET apply messages forming a single
// device-side transaction, and writes them to a flat binary file. The load
// path reads such a file back, validates its transaction markers, and replays
// the messages against a device with strictly one message in flight, aborting
// on the first rejection or acknowledgement timeout so the device rolls the
// whole transaction back.
//
// # Save
//
//	stream, err := transport.Open("/dev/ttyACM0", transport.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	saver := deviceconfig.NewSaver(stream, deviceconfig.SaverOptions{
//	    Class: deviceconfig.ClassGen9,
//	})
//	snapshot, report, err := saver.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msgs, err := deviceconfig.Assemble(snapshot, ubx.MaskAll, deviceconfig.DefaultMaxPayload)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := deviceconfig.SaveTransactionFile("backup.ubx", msgs); err != nil {
//	    log.Fatal(err)
//	}
//
// # Load
//
//	msgs, err := deviceconfig.LoadTransactionFile("backup.ubx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loader := deviceconfig.NewLoader(stream, deviceconfig.LoaderOptions{})
//	report, err := loader.Run(ctx, msgs)
//
// # Interleaved Traffic
//
// The serial line is shared with whatever the receiver is already emitting
// (NMEA sentences, NAV broadcasts). The Collector filters and correlates
// poll responses by group, layer, and pagination position, discarding
// malformed frames during a save. During a load the same garbage is fatal:
// a corrupted line cannot be trusted to have delivered the transaction
// intact.
//
// # Error Handling
//
// All engine failures are reported as *EngineError values carrying the
// failure category plus the key group, message index, or key id involved.
// Use the Is* helpers to classify and GetTroubleshootingHint for operator
// advice.
//
// # Concurrency
//
// The engine is deliberately single-threaded: correlation on the wire is
// temporal, so a run owns its stream exclusively from start to finish. Run
// methods honor context cancellation between I/O operations.
package deviceconfig
