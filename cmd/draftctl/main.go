/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// draftctl inspects and maintains a draft persistence database from the
// command line: storage health, retention cleanup, section inspection and
// resume-step preview against the same engine the wizard uses.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/suparena/draftstore"
	"github.com/suparena/draftstore/config"
	"github.com/suparena/draftstore/kvstore/sqlitekv"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configPath  = flag.String("config", "", "Path to YAML config file")
	dbPath      = flag.String("db", "", "Path to the SQLite draft database (overrides config)")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: draftctl [flags] <command> [args]

Commands:
  health             Print the storage health snapshot
  cleanup            Evict expired and out-of-retention entries
  inspect <section>  Print the stored payload for one section
  resume             Print the step the wizard would resume at
  clear              Remove the draft and all legacy snapshots

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag || *vFlag {
		info := draftstore.GetVersionInfo()
		fmt.Printf("DraftStore draftctl version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	// Optional .env for local development; absence is not an error
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "draftctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	path := cfg.StoragePath
	if *dbPath != "" {
		path = *dbPath
	}
	if path == "" {
		return fmt.Errorf("no database path: set -db, storagePath in config, or DRAFTSTORE_DB_PATH")
	}

	kv, err := sqlitekv.Open(path)
	if err != nil {
		return fmt.Errorf("open draft database: %w", err)
	}
	defer kv.Close()

	store := draftstore.New(kv, cfg.EngineOptions()...)
	defer store.Close()

	switch cmd := flag.Arg(0); cmd {
	case "health":
		return printJSON(store.Diagnostics())

	case "cleanup":
		removed := store.Cleanup()
		fmt.Printf("Removed %d stale entries\n", removed)
		return nil

	case "inspect":
		section := flag.Arg(1)
		if section == "" {
			return fmt.Errorf("inspect requires a section name")
		}
		rec := store.LoadDraft()
		if rec.IsEmpty() {
			return fmt.Errorf("no draft found")
		}
		payload, err := store.Load(section)
		if err != nil {
			return err
		}
		if payload == nil {
			fmt.Printf("Section %q is empty\n", section)
			return nil
		}
		return printJSON(payload)

	case "resume":
		rec := store.LoadDraft()
		fmt.Printf("Resume step: %s\n", store.Resume())
		if !rec.IsEmpty() {
			fmt.Printf("Draft: %s <%s> (section %q)\n",
				rec.OrganizationName, rec.ContactEmail, rec.CurrentSection)
		}
		return nil

	case "clear":
		store.Clear()
		fmt.Println("Draft cleared")
		return nil

	case "":
		usage()
		return fmt.Errorf("no command given")

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
