// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/paymentd/api"
	"github.com/bitmark-inc/paymentd/background"
	"github.com/bitmark-inc/paymentd/channel"
	"github.com/bitmark-inc/paymentd/fault"
	"github.com/bitmark-inc/paymentd/ledger/horizon"
	"github.com/bitmark-inc/paymentd/orchestrator"
	"github.com/bitmark-inc/paymentd/publish"
	"github.com/bitmark-inc/paymentd/queue"
	"github.com/bitmark-inc/paymentd/registry"
	"github.com/bitmark-inc/paymentd/storage"
	"github.com/bitmark-inc/paymentd/watcher"
)

const appName = "paymentd"

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

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, nil)
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

	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

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

	log.Infof("database: %q", theConfiguration.Database.Name)
	log.Debugf("%s = %#v", "HttpsRPC", theConfiguration.HttpsRPC.Listen)
	log.Debugf("%s = %#v", "Publish", theConfiguration.Publish.Broadcast)

	// start the data storage
	log.Info("initialise storage")
	db, err := storage.Open(theConfiguration.Database.Name)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer db.Close()

	// ledger client
	log.Info("initialise ledger")
	client, err := horizon.New(&theConfiguration.Ledger)
	if nil != err {
		log.Criticalf("ledger initialise error: %s", err)
		exitwithstatus.Message("ledger initialise error: %s", err)
	}

	log.Info("initialise channels")
	pool, err := channel.New(&theConfiguration.Channels, theConfiguration.Ledger.RootSeed, client, db)
	if nil != err {
		log.Criticalf("channel initialise error: %s", err)
		exitwithstatus.Message("channel initialise error: %s", err)
	}

	log.Info("initialise queue")
	jobs, err := queue.New(&theConfiguration.Queue, db)
	if nil != err {
		log.Criticalf("queue initialise error: %s", err)
		exitwithstatus.Message("queue initialise error: %s", err)
	}

	log.Info("initialise orchestrator")
	orch := orchestrator.New(&theConfiguration.Orchestrator, orchestrator.Resources{
		Store:              db,
		Ledger:             client,
		Channels:           pool,
		Queue:              jobs,
		WalletNativeAmount: theConfiguration.Ledger.WalletNativeAmount,
	})

	// stored jobs can be checked now every handler is registered
	log.Infof("queue: %d jobs restored", jobs.Pending())

	log.Info("initialise registry")
	watchTTL := time.Duration(theConfiguration.Watcher.WatchTTLSeconds) * time.Second
	services := registry.New(db, watchTTL)

	log.Info("initialise publish")
	publisher, err := publish.New(&theConfiguration.Publish)
	if nil != err {
		log.Criticalf("publish initialise error: %s", err)
		exitwithstatus.Message("publish initialise error: %s", err)
	}

	log.Info("initialise watcher")
	w := watcher.New(&theConfiguration.Watcher, db, client, services, orch, publisher)

	log.Info("initialise api")
	if err := loadCertificate(&theConfiguration.HttpsRPC); nil != err {
		log.Criticalf("api certificate error: %s", err)
		exitwithstatus.Message("api certificate error: %s", err)
	}
	info := api.Info{
		Name:       appName,
		Version:    version,
		HorizonURL: theConfiguration.Ledger.HorizonURL,
		Network:    theConfiguration.Ledger.Network,
		Asset:      theConfiguration.Ledger.Asset,
	}
	server, err := api.New(&theConfiguration.HttpsRPC, info, orch, services)
	if nil != err {
		log.Criticalf("api initialise error: %s", err)
		exitwithstatus.Message("api initialise error: %s", err)
	}

	// start order matters: the API is last up and first down
	processes := background.Processes{
		storage.NewExpiry(db, 0),
		jobs,
	}
	if nil != publisher {
		processes = append(processes, publisher)
	}
	processes = append(processes, w, server)

	bg := background.Start(processes, nil)

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
	bg.Stop()
}
