// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/libp2p/go-libp2p-core/crypto"
	"github.com/libp2p/go-libp2p-core/peer"

	"github.com/stayd-io/stayd/booking"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/typeddata"
)

// setup command handler
//
// commands that run to create keys these commands cannot access any
// internal database or states or the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "gen-identity", "key":
		key, _, err := crypto.GenerateEd25519Key(rand.Reader)
		if nil != err {
			exitwithstatus.Message("generate private key error: %s", err)
		}
		b, err := crypto.MarshalPrivateKey(key)
		if nil != err {
			exitwithstatus.Message("marshal private key error: %s", err)
		}
		id, err := peer.IDFromPrivateKey(key)
		if nil != err {
			exitwithstatus.Message("peer id error: %s", err)
		}
		fmt.Printf("private key: %s\n", hex.EncodeToString(b))
		fmt.Printf("peer id:     %s\n", id.Pretty())

	case "config-test", "cfg", "identity", "id":
		return false // defer processing until configuration is read

	case "load", "book", "commit":
		return false // defer processing until database is loaded

	case "start", "run":
		return false // continue processing

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}

		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [--define=NAME=VALUE] [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")
		fmt.Printf("  gen-identity               (key)    - print a new hex private key for peering or signing\n")
		fmt.Printf("\n")
		fmt.Printf("  identity                   (id)     - print the peer id and listen addresses\n")
		fmt.Printf("\n")
		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")
		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")
		fmt.Printf("  load FILE                           - store the facilities described in a Lua FILE\n")
		fmt.Printf("\n")
		fmt.Printf("  book FID ID BID FILE       (commit) - commit a booking stub against a recorded bid\n")
		fmt.Printf("                                        with the payload read from FILE, node stopped;\n")
		fmt.Printf("                                        a running node commits accept messages\n")
		fmt.Printf("\n")
		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "identity", "id":
		key, err := typeddata.DecodePrivateKey(options.Peering.PrivateKey)
		if nil != err {
			exitwithstatus.Message("error: peering private key: %s", err)
		}
		id, err := peer.IDFromPrivateKey(key)
		if nil != err {
			exitwithstatus.Message("error: cannot generate peer id  error: %s", err)
		}
		fmt.Printf("peer id: %s\n", id.Pretty())
		for _, listen := range options.Peering.Listen {
			fmt.Printf("listen:  %s/p2p/%s\n", listen, id.Pretty())
		}

	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the inventory store is open so these commands can access and/or
// change the database
func processDataCommand(log *logger.L, arguments []string, variables map[string]string, inv *inventory.Inventory, l *ledger.Ledger) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "start", "run":
		return false // continue processing

	case "load":
		if len(arguments) < 1 || "" == arguments[0] {
			exitwithstatus.Message("missing file name argument")
		}
		n, err := loadInventory(inv, arguments[0], variables)
		if nil != err {
			log.Errorf("load: %q  error: %s", arguments[0], err)
			exitwithstatus.Message("load: %q  stored: %d facilities  error: %s", arguments[0], n, err)
		}
		log.Infof("load: %q  stored: %d facilities", arguments[0], n)
		fmt.Printf("stored: %d facilities\n", n)

	case "book", "commit":
		if len(arguments) < 4 {
			exitwithstatus.Message("missing arguments: facility booking-id bid-hash payload-file")
		}
		fid, err := inventory.ParseFacilityID(arguments[0])
		if nil != err {
			exitwithstatus.Message("error in facility id: %s", err)
		}
		bookingID := arguments[1]
		b, err := hex.DecodeString(arguments[2])
		if nil != err || typeddata.HashLength != len(b) {
			exitwithstatus.Message("error in bid hash: %q", arguments[2])
		}
		var bidHash typeddata.Hash
		copy(bidHash[:], b)

		payload, err := ioutil.ReadFile(arguments[3])
		if nil != err {
			exitwithstatus.Message("error reading payload: %s", err)
		}

		err = booking.New(inv, l, nil).Commit(fid, bookingID, bidHash, payload)
		if nil != err {
			log.Errorf("facility: %s  booking: %q  commit error: %s", fid, bookingID, err)
			exitwithstatus.Message("commit error: %s", err)
		}
		log.Infof("facility: %s  booking: %q  committed", fid, bookingID)
		fmt.Printf("committed booking: %q\n", bookingID)

	default:
		exitwithstatus.Message("error: no such command: %s", command)
	}

	// indicate processing complete and perform normal exit from main
	return true
}
