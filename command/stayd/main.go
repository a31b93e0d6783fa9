// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/stayd-io/stayd/background"
	"github.com/stayd-io/stayd/inventory"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/matcher"
	"github.com/stayd-io/stayd/p2p"
	"github.com/stayd-io/stayd/storage"
	"github.com/stayd-io/stayd/typeddata"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "define", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'D'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// NAME=VALUE pairs visible to the configuration script
	variables := make(map[string]string)
	for _, d := range options["define"] {
		kv := strings.SplitN(d, "=", 2)
		if 2 != len(kv) || "" == kv[0] {
			exitwithstatus.Message("%s: define: %q is not NAME=VALUE", program, d)
		}
		variables[kv[0]] = kv[1]
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, variables)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("database: %q", theConfiguration.Database)

	// connection info
	log.Debugf("%s = %#v", "Peering", theConfiguration.Peering)
	log.Debugf("%s = %#v", "Matching", theConfiguration.Matching)

	// start the data storage
	log.Info("initialise storage")
	store, err := storage.Open(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer store.Close()

	inv := inventory.New(store)
	bids := ledger.New(inv)

	// these commands are allowed to access the internal database
	if len(arguments) > 0 && processDataCommand(log, arguments, variables, inv, bids) {
		return
	}

	// signing
	domain, err := theConfiguration.domain()
	if nil != err {
		log.Criticalf("signing domain error: %s", err)
		exitwithstatus.Message("signing domain error: %s", err)
	}
	signingKey, err := typeddata.DecodePrivateKey(theConfiguration.Signing.BidderKey)
	if nil != err {
		log.Criticalf("signing key error: %s", err)
		exitwithstatus.Message("signing key error: %s", err)
	}
	signer, err := typeddata.NewKeySigner(signingKey)
	if nil != err {
		log.Criticalf("signer error: %s", err)
		exitwithstatus.Message("signer error: %s", err)
	}

	// start up the peering
	peerKey, err := typeddata.DecodePrivateKey(theConfiguration.Peering.PrivateKey)
	if nil != err {
		log.Criticalf("peering key error: %s", err)
		exitwithstatus.Message("peering key error: %s", err)
	}
	log.Info("initialise p2p")
	node, err := p2p.NewNode(&theConfiguration.Peering, peerKey)
	if nil != err {
		log.Criticalf("p2p initialise error: %s", err)
		exitwithstatus.Message("p2p initialise error: %s", err)
	}
	defer node.Close()
	log.Infof("peer id: %s  addresses: %v", node.ID(), node.Addrs())

	// start answering asks for every stored facility
	settings, err := theConfiguration.matcherSettings(domain)
	if nil != err {
		log.Criticalf("matching configuration error: %s", err)
		exitwithstatus.Message("matching configuration error: %s", err)
	}
	log.Info("initialise matcher")
	m, err := matcher.New(settings, node, inv, bids, signer, nil)
	if nil != err {
		log.Criticalf("matcher initialise error: %s", err)
		exitwithstatus.Message("matcher initialise error: %s", err)
	}
	n, err := m.StartAll()
	if nil != err {
		log.Criticalf("matcher start error: %s", err)
		exitwithstatus.Message("matcher start error: %s", err)
	}
	defer func() {
		m.StopAll()
		// handlers still in flight use the store
		m.Wait()
	}()
	log.Infof("listening facilities: %d", n)

	// bid expiry and statistics
	processes := background.Start(background.Processes{
		ledger.NewExpiry(bids, theConfiguration.sweepInterval(), nil),
		&statistics{matcher: m, ledger: bids},
	}, nil)
	defer processes.Stop()

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		go memstats()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
