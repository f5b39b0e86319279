// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/axiom-tools/cil2cpp/assembly"
	"github.com/axiom-tools/cil2cpp/backend"
	"github.com/axiom-tools/cil2cpp/compiler"
	"github.com/axiom-tools/cil2cpp/icall"
	cil2cpplog "github.com/axiom-tools/cil2cpp/log"
	"github.com/axiom-tools/cil2cpp/lower"
	"github.com/axiom-tools/cil2cpp/reach"
)

var (
	all       bool
	verbose   bool
	dosHeader bool
	ntHeader  bool
	sections  bool
	clr       bool
	types     bool

	outPath      string
	emitLineDirs bool
	isDebugBuild bool
	jobs         int
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cil2cpp",
		Short: "An AOT CIL-to-C++ translator",
		Long:  "Translates ECMA-335 CIL bytecode into portable C++ source for a companion runtime",
		Run: func(cmd *cobra.Command, args []string) {
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print("You are using version 0.0.1")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps the file",
		Long:  "Dumps interesting structure of the Portable Executable file",
		Args:  cobra.MinimumNArgs(1),
		Run:   runDump,
	}

	var compileCmd = &cobra.Command{
		Use:   "compile",
		Short: "Compiles a managed assembly to C++",
		Long:  "Lowers an assembly's reachable CIL methods into a single C++ translation unit",
		Args:  cobra.ExactArgs(1),
		Run:   runCompile,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(compileCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	dumpCmd.Flags().BoolVarP(&dosHeader, "dosheader", "", false, "Dump DOS header")
	dumpCmd.Flags().BoolVarP(&ntHeader, "ntheader", "", false, "Dump NT header and data directories")
	dumpCmd.Flags().BoolVarP(&sections, "sections", "", false, "Dump section headers")
	dumpCmd.Flags().BoolVarP(&clr, "clr", "", false, "Dump .NET metadata")
	dumpCmd.Flags().BoolVarP(&types, "types", "", false, "Dump resolved types and methods")
	dumpCmd.Flags().BoolVarP(&all, "all", "", false, "Dump everything")

	compileCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output .cc path (stdout when empty)")
	compileCmd.Flags().BoolVarP(&emitLineDirs, "line-directives", "", false, "Emit #line directives")
	compileCmd.Flags().BoolVarP(&isDebugBuild, "debug", "", false, "Build a debug-instrumented translation unit")
	compileCmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "Number of methods to lower concurrently")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, args []string) {
	wantDOSHeader, _ := cmd.Flags().GetBool("dosheader")
	wantNTHeader, _ := cmd.Flags().GetBool("ntheader")
	wantSections, _ := cmd.Flags().GetBool("sections")
	wantCLR, _ := cmd.Flags().GetBool("clr")
	wantTypes, _ := cmd.Flags().GetBool("types")
	wantAll, _ := cmd.Flags().GetBool("all")

	cfg := config{
		wantDOSHeader: wantDOSHeader,
		wantNTHeader:  wantNTHeader,
		wantSections:  wantSections,
		wantCLR:       wantCLR,
		wantTypes:     wantTypes,
	}
	if wantAll {
		cfg = config{
			wantDOSHeader: true, wantNTHeader: true, wantSections: true,
			wantCLR: true, wantTypes: true,
		}
	}

	parse(args[0], cfg)
}

func runCompile(cmd *cobra.Command, args []string) {
	logger := cil2cpplog.NewStdLogger(os.Stdout)
	logger = cil2cpplog.NewFilter(logger, cil2cpplog.FilterLevel(cil2cpplog.LevelInfo))
	helper := cil2cpplog.NewHelper(logger)

	data, err := os.ReadFile(args[0])
	if err != nil {
		helper.Errorf("reading %s: %v", args[0], err)
		os.Exit(1)
	}

	pe, err := assembly.NewBytes(data, &assembly.Options{Logger: logger})
	if err != nil {
		helper.Errorf("opening %s: %v", args[0], err)
		os.Exit(1)
	}
	defer pe.Close()

	if err := pe.Parse(); err != nil {
		helper.Errorf("parsing %s: %v", args[0], err)
		os.Exit(1)
	}

	if jobs < 1 {
		jobs = 1
	}
	if jobs > runtime.NumCPU() {
		jobs = runtime.NumCPU()
	}

	reachable, err := reach.Analyze(pe, reach.Config{EntryPointToken: pe.CLR.CLRHeader.EntryPointRVAorToken})
	if err != nil {
		helper.Errorf("computing reachability for %s: %v", args[0], err)
		os.Exit(1)
	}

	icalls := icall.NewRegistry()
	lcfg := lower.Config{
		IsDebug:            isDebugBuild,
		EmitLineDirectives: emitLineDirs,
	}

	module, err := compiler.Build(pe, icalls, lcfg, helper, jobs, reachable)
	if err != nil {
		helper.Errorf("compiling %s: %v", args[0], err)
		os.Exit(1)
	}

	src, err := backend.Print(module, backend.Config{EmitLineDirectives: emitLineDirs})
	if err != nil {
		helper.Errorf("printing %s: %v", args[0], err)
		os.Exit(1)
	}

	if outPath == "" {
		fmt.Print(src)
		return
	}
	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		helper.Errorf("writing %s: %v", outPath, err)
		os.Exit(1)
	}
}
