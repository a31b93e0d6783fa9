// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/stayd-io/stayd/configuration"
	"github.com/stayd-io/stayd/geo"
	"github.com/stayd-io/stayd/ledger"
	"github.com/stayd-io/stayd/matcher"
	"github.com/stayd-io/stayd/p2p"
	"github.com/stayd-io/stayd/typeddata"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "stayd.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "stayd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultSigningName    = "stayd"
	defaultSigningVersion = "1"
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// typed data signing domain and the key bids and pongs are signed with
type SigningType struct {
	BidderKey         string `gluamapper:"bidder_key" json:"-"`
	Name              string `gluamapper:"name" json:"name"`
	Version           string `gluamapper:"version" json:"version"`
	ChainID           uint64 `gluamapper:"chain_id" json:"chain_id"`
	VerifyingContract string `gluamapper:"verifying_contract" json:"verifying_contract"`
}

type MatchingType struct {
	Namespace  string  `gluamapper:"namespace" json:"namespace"`
	Resolution int     `gluamapper:"resolution" json:"resolution"`
	BidPeriod  int     `gluamapper:"bid_period" json:"bid_period"` // seconds
	BidLimit   uint32  `gluamapper:"bid_limit" json:"bid_limit"`
	Currency   string  `gluamapper:"currency" json:"currency"`
	AskRate    float64 `gluamapper:"ask_rate" json:"ask_rate"`
	AskBurst   int     `gluamapper:"ask_burst" json:"ask_burst"`
}

type LedgerType struct {
	SweepInterval int `gluamapper:"sweep_interval" json:"sweep_interval"` // seconds
}

type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Signing       SigningType          `gluamapper:"signing" json:"signing"`
	Matching      MatchingType         `gluamapper:"matching" json:"matching"`
	Ledger        LedgerType           `gluamapper:"ledger" json:"ledger"`
	Peering       p2p.Configuration    `gluamapper:"peering" json:"peering"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Signing: SigningType{
			Name:    defaultSigningName,
			Version: defaultSigningVersion,
		},

		Matching: MatchingType{
			Namespace:  matcher.DefaultNamespace,
			Resolution: geo.DefaultResolution,
			BidPeriod:  int(matcher.DefaultHorizon / time.Second),
			BidLimit:   matcher.DefaultLimit,
		},

		Ledger: LedgerType{
			SweepInterval: int(ledger.DefaultSweepInterval / time.Second),
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	if options.Matching.BidPeriod <= 0 {
		return nil, fmt.Errorf("Matching: bid period: %d must be positive", options.Matching.BidPeriod)
	}
	if options.Ledger.SweepInterval <= 0 {
		return nil, fmt.Errorf("Ledger: sweep interval: %d must be positive", options.Ledger.SweepInterval)
	}
	if _, err := geo.CellOf(0, 0, options.Matching.Resolution); nil != err {
		return nil, fmt.Errorf("Matching: resolution: %d is not supported", options.Matching.Resolution)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = configuration.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = configuration.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// done
	return options, nil
}

// signing domain from the configuration
func (c *Configuration) domain() (*typeddata.Domain, error) {
	d := &typeddata.Domain{
		Name:    c.Signing.Name,
		Version: c.Signing.Version,
		ChainID: new(big.Int).SetUint64(c.Signing.ChainID),
	}
	if "" != c.Signing.VerifyingContract {
		a, err := typeddata.ParseAddress(c.Signing.VerifyingContract)
		if nil != err {
			return nil, err
		}
		d.VerifyingContract = a
	}
	return d, nil
}

// matcher settings from the configuration
func (c *Configuration) matcherSettings(domain *typeddata.Domain) (*matcher.Settings, error) {
	s := &matcher.Settings{
		Namespace:  c.Matching.Namespace,
		Resolution: c.Matching.Resolution,
		Domain:     domain,
		Horizon:    time.Duration(c.Matching.BidPeriod) * time.Second,
		Limit:      c.Matching.BidLimit,
		AskRate:    c.Matching.AskRate,
		AskBurst:   c.Matching.AskBurst,
	}
	if "" != c.Matching.Currency {
		a, err := typeddata.ParseAddress(c.Matching.Currency)
		if nil != err {
			return nil, err
		}
		s.Currency = a
	}
	return s, nil
}

func (c *Configuration) sweepInterval() time.Duration {
	return time.Duration(c.Ledger.SweepInterval) * time.Second
}
