package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/berkaydemir/netraven/internal/config"
	"github.com/berkaydemir/netraven/internal/dnsutil"
	"github.com/berkaydemir/netraven/internal/iface"
	"github.com/berkaydemir/netraven/internal/osfp"
	"github.com/berkaydemir/netraven/internal/output"
	"github.com/berkaydemir/netraven/internal/scan"
	"github.com/berkaydemir/netraven/internal/svcdetect"
	"github.com/berkaydemir/netraven/internal/target"
	"github.com/berkaydemir/netraven/internal/tracert"
)

var (
	cfgFile string
	cfg     *config.Config

	verbose bool
	noColor bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "netraven",
	Short: "Multi-mode active network scanner and discovery engine",
	Long: `netraven - active host discovery, port scanning, OS fingerprinting,
traceroute, service classification, and DNS batch resolution.

Examples:
  netraven scan --ports top10 192.168.1.0/24         Connect-scan a /24 over the top10 preset
  netraven scan --type tcp_syn --ports 1-1024 10.0.0.5   SYN scan a single host
  netraven osfp --tcp-open 80,443 10.0.0.5       Fingerprint a host's stack
  netraven trace 8.8.8.8                         Hop-by-hop traceroute
  netraven svcdetect --ports 22,80,443 10.0.0.5  Banner-grab open ports
  netraven dns 8.8.8.8 example.com               Batch forward/reverse DNS`,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/netraven/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format where supported")

	rootCmd.AddCommand(versionCmd, configCmd, scanCmd, osfpCmd, traceCmd, svcCmd, dnsCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("netraven %s\n", version)
		fmt.Printf("  Commit: %s\n", commit)
		fmt.Printf("  Built:  %s\n", date)
		fmt.Printf("  Config: %s\n", config.GetConfigPath())
	},
}

var (
	configInit bool
	configShow bool
	configPath bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show example configuration")
	configCmd.Flags().BoolVar(&configPath, "path", false, "Show config file path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	switch {
	case configPath:
		fmt.Println(config.GetConfigPath())
	case configInit:
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.DefaultConfig().Save(); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Printf("Created config file: %s\n", path)
	case configShow:
		fmt.Println(config.GenerateExample())
	default:
		return cmd.Help()
	}
	return nil
}

// --- scan ---

var (
	scanTypeFlag  string
	portsFlag     string
	hostsConc     int
	portsConc     int
	scanTimeout   time.Duration
	scanWaitTime  time.Duration
	srcPortFlag   uint16
	asyncFlag     bool
	serviceDetect bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>...",
	Short: "Host discovery and port scan",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanTypeFlag, "type", "t", "", "Scan type: icmp_ping, tcp_ping, udp_ping, tcp_connect, tcp_syn")
	scanCmd.Flags().StringVarP(&portsFlag, "ports", "p", "", "Port spec (e.g. 1-1024,8080) or a configured preset name")
	scanCmd.Flags().IntVar(&hostsConc, "hosts-concurrency", 0, "Max concurrent hosts")
	scanCmd.Flags().IntVar(&portsConc, "ports-concurrency", 0, "Max concurrent ports per host")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Overall scan deadline")
	scanCmd.Flags().DurationVar(&scanWaitTime, "wait-time", 0, "Grace period after the last probe before draining")
	scanCmd.Flags().Uint16Var(&srcPortFlag, "src-port", 0, "Source port for raw-socket scan types")
	scanCmd.Flags().BoolVar(&asyncFlag, "async", true, "Use the bounded-concurrency sender instead of strictly sequential")
	scanCmd.Flags().BoolVar(&serviceDetect, "service-detect", false, "Run banner-grab service classification on open ports")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	scanType, err := parseScanType(firstNonEmpty(scanTypeFlag, cfg.Defaults.ScanType))
	if err != nil {
		return err
	}

	portTokens, err := resolvePortTokens(portsFlag)
	if err != nil {
		return err
	}
	ports, err := target.ExpandPorts(portTokens)
	if err != nil {
		return fmt.Errorf("expand ports: %w", err)
	}

	var dests []scan.Destination
	for _, raw := range args {
		expr := cfg.ResolveTarget(raw)
		ips, err := target.Expand(ctx, []string{expr})
		if err != nil {
			return fmt.Errorf("expand target %q: %w", raw, err)
		}
		for _, ip := range ips {
			dests = append(dests, scan.Destination{IP: ip, Ports: ports})
		}
	}

	async := cfg.Defaults.Async
	if cmd.Flags().Changed("async") {
		async = asyncFlag
	}

	setting := scan.ScanSetting{
		ScanType:         scanType,
		Destinations:     dests,
		SrcPort:          srcPortFlag,
		HostsConcurrency: firstNonZero(hostsConc, cfg.Defaults.HostsConcurrency),
		PortsConcurrency: firstNonZero(portsConc, cfg.Defaults.PortsConcurrency),
		Timeout:          firstNonZeroDuration(scanTimeout, cfg.Defaults.Timeout),
		WaitTime:         firstNonZeroDuration(scanWaitTime, cfg.Defaults.WaitTime),
		SendRate:         cfg.Defaults.SendRate,
		Async:            async,
	}

	if setting.ScanType != scan.TcpConnectScan {
		srcIP, err := iface.LocalIP()
		if err != nil {
			return fmt.Errorf("determine source IP: %w", err)
		}
		setting.SrcIP = srcIP
	}

	scanner, err := scan.New(setting)
	if err != nil {
		return err
	}

	result := scanner.Scan(ctx, scan.NewStopFlag())

	if serviceDetect || cfg.Defaults.ServiceDetect.Enabled {
		runServiceDetect(ctx, result)
	}

	return writeScanResult(result)
}

func runServiceDetect(ctx context.Context, result scan.ScanResult) {
	for key := range result.Ports {
		ip := net.ParseIP(key)
		var open []uint16
		for _, p := range result.GetOpenPorts(ip) {
			open = append(open, p.Port)
		}
		if len(open) == 0 {
			continue
		}

		d := svcdetect.New(ip, open)
		d.ConnectTimeout = cfg.Defaults.ServiceDetect.ConnectTimeout
		d.ReadTimeout = cfg.Defaults.ServiceDetect.ReadTimeout
		d.AcceptInvalidCerts = cfg.Defaults.ServiceDetect.AcceptInvalidCerts

		for _, r := range d.Detect(ctx) {
			if r.Err != nil {
				continue
			}
			fmt.Printf("%s:%d  %s\n", ip, r.Port, strings.TrimSpace(r.Banner))
		}
	}
}

func writeScanResult(result scan.ScanResult) error {
	outCfg := output.DefaultConfig()
	outCfg.Colors = !noColor

	format := output.FormatTable
	if jsonOut {
		format = output.FormatJSON
	}
	return output.NewWriter(format, outCfg).Write(result)
}

func parseScanType(s string) (scan.ScanType, error) {
	switch s {
	case "icmp_ping":
		return scan.IcmpPingScan, nil
	case "tcp_ping":
		return scan.TcpPingScan, nil
	case "udp_ping":
		return scan.UdpPingScan, nil
	case "tcp_connect", "":
		return scan.TcpConnectScan, nil
	case "tcp_syn":
		return scan.TcpSynScan, nil
	default:
		return 0, fmt.Errorf("unknown scan type %q", s)
	}
}

func resolvePortTokens(flag string) ([]string, error) {
	if flag == "" {
		return []string{"1-1024"}, nil
	}
	if preset, err := cfg.ResolvePorts(flag); err == nil {
		return preset, nil
	}
	return strings.Split(flag, ","), nil
}

// --- osfp ---

var (
	osfpOpenTCP   string
	osfpClosedTCP uint16
	osfpOpenUDP   uint16
	osfpClosedUDP uint16
)

var osfpCmd = &cobra.Command{
	Use:   "osfp <target>",
	Short: "OS/stack fingerprint battery against a single target",
	Args:  cobra.ExactArgs(1),
	RunE:  runOsfp,
}

func init() {
	osfpCmd.Flags().StringVar(&osfpOpenTCP, "tcp-open", "", "Comma-separated known-open TCP ports")
	osfpCmd.Flags().Uint16Var(&osfpClosedTCP, "tcp-closed", 0, "Known-closed TCP port")
	osfpCmd.Flags().Uint16Var(&osfpOpenUDP, "udp-open", 0, "Known-open UDP port")
	osfpCmd.Flags().Uint16Var(&osfpClosedUDP, "udp-closed", 0, "Known-closed UDP port")
}

func runOsfp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ips, err := target.Expand(ctx, []string{cfg.ResolveTarget(args[0])})
	if err != nil || len(ips) == 0 {
		return fmt.Errorf("resolve target: %w", err)
	}

	var openTCP []uint16
	if osfpOpenTCP != "" {
		p, err := target.ExpandPorts(strings.Split(osfpOpenTCP, ","))
		if err != nil {
			return err
		}
		openTCP = p
	}

	srcIP, err := iface.LocalIP()
	if err != nil {
		return fmt.Errorf("determine source IP: %w", err)
	}

	result, err := osfp.Run(srcIP, osfp.ProbeTarget{
		IP:            ips[0],
		OpenTCPPorts:  openTCP,
		ClosedTCPPort: osfpClosedTCP,
		OpenUDPPort:   osfpOpenUDP,
		ClosedUDPPort: osfpClosedUDP,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%+v\n", result)
	return nil
}

// --- trace ---

var (
	traceProto   string
	traceMaxHops int
	traceQueries int
	traceTimeout time.Duration
)

var traceCmd = &cobra.Command{
	Use:   "trace <target>",
	Short: "Hop-by-hop traceroute",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

func init() {
	traceCmd.Flags().StringVar(&traceProto, "proto", "udp", "Probe protocol: icmp, udp, tcp")
	traceCmd.Flags().IntVar(&traceMaxHops, "max-hops", 0, "Maximum TTL")
	traceCmd.Flags().IntVar(&traceQueries, "queries", 0, "Probes per hop")
	traceCmd.Flags().DurationVar(&traceTimeout, "timeout", 0, "Per-probe timeout")
}

func runTrace(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ips, err := target.Expand(ctx, []string{cfg.ResolveTarget(args[0])})
	if err != nil || len(ips) == 0 {
		return fmt.Errorf("resolve target: %w", err)
	}

	proto := tracert.ProtoUDP
	switch traceProto {
	case "icmp":
		proto = tracert.ProtoICMP
	case "tcp":
		proto = tracert.ProtoTCP
	}

	t, err := tracert.New(ips[0], tracert.Config{
		Protocol:        proto,
		MaxHops:         traceMaxHops,
		NumberOfQueries: traceQueries,
		Timeout:         traceTimeout,
	})
	if err != nil {
		return err
	}
	defer t.Close()

	fmt.Printf("traceroute to %s\n", ips[0])
	for {
		hop, ok := t.Next()
		if !ok {
			break
		}
		printHop(hop)
	}
	return nil
}

func printHop(hop tracert.Hop) {
	if len(hop.Queries) == 0 {
		fmt.Printf("%3d  *\n", hop.TTL)
		return
	}
	for _, q := range hop.Queries {
		fmt.Printf("%3d  %s  %s\n", hop.TTL, strings.Join(q.Addr, ","), q.RTT)
	}
}

// --- svcdetect ---

var svcPortsFlag string

var svcCmd = &cobra.Command{
	Use:   "svcdetect <target>",
	Short: "Banner-grab service classification over known-open ports",
	Args:  cobra.ExactArgs(1),
	RunE:  runSvcDetect,
}

func init() {
	svcCmd.Flags().StringVar(&svcPortsFlag, "ports", "", "Comma-separated ports to probe")
}

func runSvcDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ips, err := target.Expand(ctx, []string{cfg.ResolveTarget(args[0])})
	if err != nil || len(ips) == 0 {
		return fmt.Errorf("resolve target: %w", err)
	}

	if svcPortsFlag == "" {
		return fmt.Errorf("--ports is required")
	}
	ports, err := target.ExpandPorts(strings.Split(svcPortsFlag, ","))
	if err != nil {
		return err
	}

	d := svcdetect.New(ips[0], ports)
	d.DstName = args[0]
	for _, r := range d.Detect(ctx) {
		if r.Err != nil {
			fmt.Printf("%d  error: %v\n", r.Port, r.Err)
			continue
		}
		fmt.Printf("%d  %s\n", r.Port, strings.TrimSpace(r.Banner))
	}
	return nil
}

// --- dns ---

var dnsCmd = &cobra.Command{
	Use:   "dns <target>...",
	Short: "Batch forward/reverse DNS resolution",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDNS,
}

func runDNS(cmd *cobra.Command, args []string) error {
	results := dnsutil.Resolve(cmd.Context(), args)
	for _, r := range results {
		fmt.Println(r)
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func firstNonZeroDuration(a, b time.Duration) time.Duration {
	if a != 0 {
		return a
	}
	return b
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets version information for the CLI.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}
