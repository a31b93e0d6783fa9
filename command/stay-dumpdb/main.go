// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/stayd-io/stayd/booking"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/storage"
)

type metadata struct {
	store   *storage.Store
	inv     *inventory.Inventory
	ledger  *ledger.Ledger
	booking *booking.Service
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "stay-dumpdb"
	app.Usage = "inspect a stayd inventory database"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "database, d",
			Value: "",
			Usage: "*LevelDB `DIRECTORY` of the inventory",
		},
	}

	facilityFlag := cli.StringFlag{
		Name:  "facility, f",
		Value: "",
		Usage: "*facility id `HEX`",
	}

	app.Commands = []cli.Command{
		{
			Name:      "facilities",
			Usage:     "list every facility",
			ArgsUsage: "\n   (* = required)",
			Action:    runFacilities,
		},
		{
			Name:      "items",
			Usage:     "list the items of a facility",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{facilityFlag},
			Action:    runItems,
		},
		{
			Name:      "bids",
			Usage:     "list the outstanding bids of a facility",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{facilityFlag},
			Action:    runBids,
		},
		{
			Name:      "stubs",
			Usage:     "list the bookings of a facility staying on a date",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				facilityFlag,
				cli.StringFlag{
					Name:  "date, t",
					Value: "",
					Usage: "*night `YYYY-MM-DD`",
				},
				cli.BoolFlag{
					Name:  "payload, p",
					Usage: " include the stub payload",
				},
			},
			Action: runStubs,
		},
		{
			Name:      "occupancy",
			Usage:     "booked and available spaces of an item per night",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				facilityFlag,
				cli.StringFlag{
					Name:  "item, i",
					Value: "",
					Usage: "*item id `HEX`",
				},
				cli.StringFlag{
					Name:  "date, t",
					Value: "",
					Usage: " first night `YYYY-MM-DD` [today]",
				},
				cli.IntFlag{
					Name:  "nights, n",
					Value: 14,
					Usage: " number of nights `COUNT`",
				},
			},
			Action: runOccupancy,
		},
		{
			Name:   "version",
			Usage:  "display stay-dumpdb version",
			Action: runVersion,
		},
	}

	// open the database read only before any command
	app.Before = func(c *cli.Context) error {

		command := c.Args().Get(0)
		if "" == command || "version" == command || "help" == command || "h" == command {
			return nil
		}

		database := c.GlobalString("database")
		if "" == database {
			return fmt.Errorf("database directory is required")
		}
		verbose := c.GlobalBool("verbose")
		if verbose {
			fmt.Fprintf(c.App.ErrWriter, "database: %q\n", database)
		}

		store, err := storage.Open(database, storage.ReadOnly)
		if nil != err {
			return err
		}
		inv := inventory.New(store)
		l := ledger.New(inv)

		c.App.Metadata["config"] = &metadata{
			store:   store,
			inv:     inv,
			ledger:  l,
			booking: booking.New(inv, l, nil),
			verbose: verbose,
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if ok {
			m.store.Close()
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
