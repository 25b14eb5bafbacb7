// Package app wires a [routing.Router] to a snapshot source and a node
// directory, the way a node embedding the routing layer starts up.
//
// # Basic Usage
//
//	settings, err := config.Load(config.Options{File: "routing.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app, err := app.Run(app.Config{Settings: settings})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Stop()
//
//	it, err := app.Router().PreferredIterator("logs", 0)
//	for e := it.NextOrNil(); e != nil; e = it.NextOrNil() {
//	    // try e.CurrentNodeID()
//	}
//
// # Snapshot Sources
//
// Without a Source, the app serves a static snapshot built from the
// configured indices and nodes (see [StaticTable]). Pass a shared source,
// such as the NATS snapshot store, to follow an allocation service instead.
package app
