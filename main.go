package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gonet-tunnel/application"
	"gonet-tunnel/infrastructure/logging"
	"gonet-tunnel/infrastructure/netutil"
	"gonet-tunnel/presentation"
	"gonet-tunnel/settings"
)

const (
	packageName = "gonet-tunnel"
	serverMode  = "s"
	clientMode  = "c"
	serverIcon  = "🌐"
	clientIcon  = "🖥️"
)

func main() {
	if !netutil.IsRoot() {
		fmt.Printf("⚠️  Warning: %s must be run with admin privileges\n", packageName)
		os.Exit(1)
	}

	configPath := flag.String("config", "", "path to the configuration file (default: ./server.json or ./client.json)")
	host := flag.String("host", "", "client only: remote server host")
	port := flag.String("port", "", "UDP port, both roles")
	secret := flag.String("secret", "", "shared secret used to derive the session key")
	dns := flag.String("dns", "", "server only: DNS literal handed to clients")
	replaceDefaultRoute := flag.Bool("default-route", false, "client only: replace the default route with the tunnel")
	flag.Parse()

	var mode string
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	} else {
		mode = strings.ToLower(strings.TrimSpace(promptForMode()))
	}

	flags := &application.Flags{}
	logger := logging.NewLogLogger()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigChan
		log.Println("\n⏹️  Interrupt received. Shutting down...")
		flags.Interrupt()
	}()

	switch mode {
	case serverMode:
		fmt.Printf("%s Starting server...\n", serverIcon)
		runServer(flags, logger, *configPath, *port, *secret, *dns)
	case clientMode:
		fmt.Printf("%s️ Starting client...\n", clientIcon)
		runClient(flags, logger, *configPath, *host, *port, *secret, *replaceDefaultRoute)
	default:
		fmt.Printf("❌ Unknown mode: %s\n", mode)
		printUsage()
		os.Exit(1)
	}
}

func runServer(flags *application.Flags, logger application.Logger, configPath, port, secret, dns string) {
	path := configPath
	if path == "" {
		path = "server.json"
	}
	cfg, err := settings.ReadServerConfiguration(path)
	if err != nil {
		log.Fatalf("load server configuration: %v", err)
	}
	if port != "" {
		cfg.Port = port
	}
	if secret != "" {
		cfg.Secret = secret
	}
	if dns != "" {
		cfg.DNS = dns
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid server configuration: %v", err)
	}

	if err := presentation.StartServer(flags, logger, cfg.Port, cfg.Secret, cfg.DNS); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func runClient(flags *application.Flags, logger application.Logger, configPath, host, port, secret string, replaceDefaultRoute bool) {
	path := configPath
	if path == "" {
		path = "client.json"
	}
	cfg, err := settings.ReadClientConfiguration(path)
	if err != nil {
		log.Fatalf("load client configuration: %v", err)
	}
	if host != "" {
		cfg.Host = host
	}
	if port != "" {
		cfg.Port = port
	}
	if secret != "" {
		cfg.Secret = secret
	}
	if replaceDefaultRoute {
		cfg.ReplaceDefaultRoute = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid client configuration: %v", err)
	}

	if err := presentation.StartClient(flags, logger, cfg.Host, cfg.Port, cfg.Secret, cfg.ReplaceDefaultRoute); err != nil {
		log.Fatalf("client exited: %v", err)
	}
}

func promptForMode() string {
	fmt.Printf("✨ Welcome to %s!\n", packageName)
	fmt.Println("Please select mode:")
	fmt.Printf("\t %s - Server %s\n", serverMode, serverIcon)
	fmt.Printf("\t %s - Client %s\n", clientMode, clientIcon)
	fmt.Print("👉 Your choice: ")

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

func printUsage() {
	fmt.Printf(`Usage: %s [-host H] [-port P] [-secret S] [-dns D] [-config path] [-default-route] <mode>
Modes:
  %s  - Server %s
  %s  - Client %s
`, packageName, serverMode, serverIcon, clientMode, clientIcon)
}
