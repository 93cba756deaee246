package main

import (
	"log"

	"github.com/ngenohkevin/sysinfo-agent/config"
	"github.com/ngenohkevin/sysinfo-agent/internal/accel"
	"github.com/ngenohkevin/sysinfo-agent/internal/node"
	"github.com/ngenohkevin/sysinfo-agent/internal/pyenv"
	"github.com/ngenohkevin/sysinfo-agent/internal/report"
	"github.com/ngenohkevin/sysinfo-agent/internal/server"
	"github.com/ngenohkevin/sysinfo-agent/internal/system"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	collector := report.NewCollector(
		system.NewFacts(system.NewProbe(), cfg.CPUSampleWindow),
		accel.NewFacts(accel.NewSMI(cfg.NvidiaSMI), cfg.ProbeTimeout),
		pyenv.New(cfg.PythonBin, cfg.ProbeTimeout, pyenv.DefaultWatchList),
	)

	nodes := node.NewRegistry()
	if err := node.RegisterSystemInfo(nodes, collector); err != nil {
		log.Fatalf("Failed to register nodes: %v", err)
	}

	log.Printf("Reporting on interpreter %s", cfg.PythonBin)

	// Create and run server
	srv := server.New(cfg, collector, nodes)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
