package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"red-envelope/internal/config"
	"red-envelope/internal/service"
)

func main() {
	install := flag.Bool("install", false, "Install Windows service")
	uninstall := flag.Bool("uninstall", false, "Uninstall Windows service")
	start := flag.Bool("start", false, "Start the service")
	stop := flag.Bool("stop", false, "Stop the service")
	debug := flag.Bool("debug", false, "Run in debug/console mode")
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *version {
		fmt.Printf("Red Envelope Service\n")
		fmt.Printf("Version: %s\n", config.Version)
		os.Exit(0)
	}

	exePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}

	// Change to executable directory for config loading
	if err := os.Chdir(filepath.Dir(exePath)); err != nil {
		log.Printf("Warning: could not change to executable directory: %v", err)
	}

	switch {
	case *install:
		if err := service.InstallService(exePath); err != nil {
			log.Fatalf("Failed to install service: %v", err)
		}
		fmt.Println("Service installed successfully")

		if err := service.StartService(); err != nil {
			log.Printf("Warning: Failed to start service: %v", err)
			fmt.Println("You may need to start the service manually")
		} else {
			fmt.Println("Service started")
		}

	case *uninstall:
		_ = service.StopService()

		if err := service.UninstallService(); err != nil {
			log.Fatalf("Failed to uninstall service: %v", err)
		}
		fmt.Println("Service uninstalled successfully")

	case *start:
		if err := service.StartService(); err != nil {
			log.Fatalf("Failed to start service: %v", err)
		}
		fmt.Println("Service started")

	case *stop:
		if err := service.StopService(); err != nil {
			log.Fatalf("Failed to stop service: %v", err)
		}
		fmt.Println("Service stopped")

	default:
		isService, err := service.IsWindowsService()
		if err != nil {
			log.Printf("Warning: could not determine if running as service: %v", err)
		}

		app := service.NewApplication()

		switch {
		case isService:
			service.RunService(false, app)
		case *debug:
			service.RunService(true, app)
		default:
			fmt.Println("Red Envelope Service")
			fmt.Printf("Version: %s\n", config.Version)
			fmt.Println("Running in console mode. Press Ctrl+C to stop.")
			fmt.Println()
			fmt.Println("Available commands:")
			fmt.Println("  -install    Install as Windows service")
			fmt.Println("  -uninstall  Uninstall Windows service")
			fmt.Println("  -start      Start the service")
			fmt.Println("  -stop       Stop the service")
			fmt.Println("  -debug      Run in debug mode")
			fmt.Println("  -version    Show version")
			fmt.Println()

			app.Run()
		}
	}
}
