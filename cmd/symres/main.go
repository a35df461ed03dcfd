// Command symres resolves symbol addresses inside ELF and PE binaries.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reversewire/symres/internal/rlog"
	"github.com/reversewire/symres/internal/symres"
)

var (
	verbose  bool
	cfgFile  string
	cfg      = viper.New()
	errColor = color.New(color.FgRed, color.Bold)
	okColor  = color.New(color.FgGreen)
	dimColor = color.New(color.FgHiBlack)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "symres",
		Short: "Resolve symbol addresses inside ELF and PE binaries",
		Long: `symres opens an ELF or PE image, builds its GOT/PLT (or IAT/EAT) maps,
and exposes a single unified name -> address index.

Examples:
  symres resolve /bin/ls puts        # Look up one symbol
  symres info /bin/ls                # Dump everything symres found`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rlog.Init(verbose)
			return bindConfig(cmd)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose debug output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (none is read unless set)")
	rootCmd.PersistentFlags().Uint64("candidate-stride", 0, "PLT candidate stride in bytes (0 = use default)")
	rootCmd.PersistentFlags().Uint64("per-candidate-timeout-ms", 0, "PLT candidate emulation timeout in ms (0 = use default)")

	resolveCmd := &cobra.Command{
		Use:   "resolve <path> <symbol>",
		Short: "Resolve a single symbol to its address",
		Args:  cobra.ExactArgs(2),
		RunE:  runResolve,
	}

	infoCmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Show everything symres discovered in a binary",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	rootCmd.AddCommand(resolveCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bindConfig loads an optional config file and environment overrides into
// the global viper instance; flags are bound per-command since cobra only
// exposes cmd.Flags() once the command is known.
func bindConfig(cmd *cobra.Command) error {
	cfg.SetEnvPrefix("SYMRES")
	cfg.AutomaticEnv()

	if cfgFile != "" {
		cfg.SetConfigFile(cfgFile)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return cfg.BindPFlags(cmd.Flags())
}

// resolverConfig builds a symres.Config from the reference defaults
// overlaid with anything the user set via flags, env, or config file.
func resolverConfig() symres.Config {
	resolverCfg := symres.DefaultConfig()
	if v := cfg.GetUint64("candidate-stride"); v != 0 {
		resolverCfg.CandidateStride = v
	}
	if v := cfg.GetUint64("per-candidate-timeout-ms"); v != 0 {
		resolverCfg.PerCandidateTimeoutMS = v
	}
	return resolverCfg
}

func openImage(path string) (*symres.Image, error) {
	img, err := symres.Open(path, resolverConfig())
	if err != nil {
		return nil, err
	}
	return img, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	path, name := args[0], args[1]

	img, err := openImage(path)
	if err != nil {
		return err
	}

	addr, err := img.Resolve(name)
	if err != nil {
		return err
	}

	okColor.Printf("%s = 0x%x\n", name, addr)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	img, err := openImage(path)
	if err != nil {
		return err
	}

	fmt.Printf("Binary:  %s\n", filepath.Base(img.Path()))
	fmt.Printf("Format:  %s\n", img.Format())
	fmt.Printf("Arch:    %s\n", img.Arch())
	fmt.Printf("Bits:    %d\n", img.Bitness())
	fmt.Printf("Symbols: %d\n\n", len(img.Symbols()))

	switch img.Format() {
	case symres.FormatELF:
		printMap("GOT", img.GOT())
		printMap("PLT", img.PLT())
	case symres.FormatPE:
		printMap("IAT", img.IAT())
		printMap("EAT", img.EAT())
	}

	return nil
}

func printMap(label string, m map[string]uint64) {
	if len(m) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", label, len(m))

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dimColor.Printf("  0x%08x  %s\n", m[name], name)
	}
	fmt.Println()
}
