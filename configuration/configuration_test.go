// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stayd-io/stayd/configuration"
	"github.com/stayd-io/stayd/fault"
)

type peering struct {
	Listen  []string `gluamapper:"listen"`
	Connect []string `gluamapper:"connect"`
}

type config struct {
	DataDirectory string            `gluamapper:"data_directory"`
	Namespace     string            `gluamapper:"namespace"`
	Resolution    int               `gluamapper:"resolution"`
	Peering       peering           `gluamapper:"peering"`
	Levels        map[string]string `gluamapper:"levels"`
}

func write(t *testing.T, text string) (string, func()) {
	dir, err := ioutil.TempDir("", "configuration")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	fileName := filepath.Join(dir, "test.conf")
	if err := ioutil.WriteFile(fileName, []byte(text), 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}
	return fileName, func() { os.RemoveAll(dir) }
}

func TestParse(t *testing.T) {
	fileName, done := write(t, `
local M = {}
M.data_directory = "."
M.namespace = "stayd/" .. network
M.resolution = 6
M.peering = {
    listen = { "/ip4/0.0.0.0/tcp/2136" },
}
M.levels = { main = "info", DEFAULT = "critical" }
return M
`)
	defer done()

	c := &config{Resolution: 1}
	err := configuration.ParseConfigurationFile(fileName, c, map[string]string{"network": "testing"})
	assert.Nil(t, err, "parse")
	assert.Equal(t, ".", c.DataDirectory, "data directory")
	assert.Equal(t, "stayd/testing", c.Namespace, "variable substituted")
	assert.Equal(t, 6, c.Resolution, "resolution")
	assert.Equal(t, []string{"/ip4/0.0.0.0/tcp/2136"}, c.Peering.Listen, "listen")
	assert.Equal(t, "info", c.Levels["main"], "levels")
}

func TestParseDefaultsKept(t *testing.T) {
	fileName, done := write(t, `return { namespace = "x" }`)
	defer done()

	c := &config{Resolution: 6}
	err := configuration.ParseConfigurationFile(fileName, c, nil)
	assert.Nil(t, err, "parse")
	assert.Equal(t, 6, c.Resolution, "default kept")
	assert.Equal(t, "x", c.Namespace, "set")
}

func TestParseErrors(t *testing.T) {
	fileName, done := write(t, `return 42`)
	defer done()

	err := configuration.ParseConfigurationFile(fileName, &config{}, nil)
	assert.Equal(t, fault.ErrUnsupportedConfiguration, err, "not a table")

	err = configuration.ParseConfigurationFile(fileName, config{}, nil)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "not a pointer")

	err = configuration.ParseConfigurationFile("/nonexistent/stayd.conf", &config{}, nil)
	assert.NotNil(t, err, "missing file")

	bad, done2 := write(t, `return {`)
	defer done2()
	err = configuration.ParseConfigurationFile(bad, &config{}, nil)
	assert.NotNil(t, err, "syntax error")
}

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "/data/log", configuration.EnsureAbsolute("/data", "log"), "relative")
	assert.Equal(t, "/var/log", configuration.EnsureAbsolute("/data", "/var/log"), "absolute")
	assert.Equal(t, "/data/log", configuration.EnsureAbsolute("/data", "./x/../log"), "cleaned")
}
