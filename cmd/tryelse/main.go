package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tangzhangming/tryelse/internal/ast"
	"github.com/tangzhangming/tryelse/internal/bind"
	"github.com/tangzhangming/tryelse/internal/config"
	"github.com/tangzhangming/tryelse/internal/errors"
	"github.com/tangzhangming/tryelse/internal/eval"
	"github.com/tangzhangming/tryelse/internal/treejson"
)

const (
	Version = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "check":
		cmdCheck(args)
	case "run":
		cmdRun(args)
	case "init":
		cmdInit(args)
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("tryelse %s - try/else control-flow engine\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  tryelse <command> [options] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  check <tree.json>   resolve else bindings and report diagnostics")
	fmt.Println("  run <tree.json>     check, then evaluate the completion semantics")
	fmt.Println("  init                write a default tryelse.toml")
	fmt.Println("  version             print version")
	fmt.Println("  help                print this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tryelse check tree.json")
	fmt.Println("  tryelse run -trace tree.json")
}

// loadTree 读取并解码语句树
func loadTree(filename string) ([]ast.Statement, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	return treejson.Decode(filename, data)
}

// runCheck 执行绑定消歧并输出诊断，返回 (语句树, 是否有错误)
func runCheck(cfg *config.Config, filename string, log *zap.Logger) ([]ast.Statement, *errors.Reporter, bool) {
	stmts, err := loadTree(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, true
	}

	rep := errors.NewReporter()
	rep.WarningsAsErrors = cfg.Diagnostics.WarningsAsErrors
	formatter := errors.NewFormatter()
	formatter.Colors = cfg.Diagnostics.Color
	formatter.ShowHints = cfg.Diagnostics.Hints
	rep.SetFormatter(formatter)

	resolver := bind.New(rep, bind.WithLogger(log))
	resolver.Resolve(stmts)

	if cfg.Diagnostics.JSON {
		data, err := errors.MarshalDiagnostics(rep.All())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, true
		}
		fmt.Println(string(data))
	} else {
		rep.PrintAll(os.Stderr)
	}

	return stmts, rep, rep.HasErrors()
}

// cmdCheck 检查语句树
func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", config.ConfigFileName, "config file path")
	jsonOut := fs.Bool("json", false, "print diagnostics as JSON")
	strict := fs.Bool("strict", false, "treat warnings as errors")

	fs.Usage = func() {
		fmt.Println("Usage: tryelse check [options] <tree.json>")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(*configPath)
	if *jsonOut {
		cfg.Diagnostics.JSON = true
	}
	if *strict {
		cfg.Diagnostics.WarningsAsErrors = true
	}

	log := buildLogger(cfg)
	defer log.Sync()

	_, _, failed := runCheck(cfg, fs.Arg(0), log)
	if failed {
		os.Exit(1)
	}
}

// cmdRun 检查并求值语句树
func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", config.ConfigFileName, "config file path")
	trace := fs.Bool("trace", false, "trace state machine transitions")

	fs.Usage = func() {
		fmt.Println("Usage: tryelse run [options] <tree.json>")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(*configPath)
	if *trace {
		cfg.Eval.Trace = true
	}

	log := buildLogger(cfg)
	defer log.Sync()

	stmts, _, failed := runCheck(cfg, fs.Arg(0), log)
	if failed {
		os.Exit(1)
	}

	hierarchy := eval.NewHierarchy()
	for _, entry := range cfg.Eval.Hierarchy {
		child, parent, ok := config.ParseHierarchy(entry)
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid hierarchy entry: %q\n", entry)
			os.Exit(1)
		}
		hierarchy.Register(child, parent)
	}

	ev := eval.New(
		eval.WithExceptionHierarchy(hierarchy),
		eval.WithLogger(log),
	)

	out, err := ev.Run(stmts, eval.NewEnv())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	data, err := treejson.EncodeOutcome(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(data))

	// 未处理的异常传出顶层即终止执行单元
	if out.Kind == eval.OutcomeThrown {
		fmt.Fprintf(os.Stderr, "%s[%s]: %s\n",
			errors.LevelError, errors.R0600, out.Ex)
		os.Exit(1)
	}
}

// cmdInit 生成默认配置文件
func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite existing config file")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if _, err := os.Stat(config.ConfigFileName); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists (use -force to overwrite)\n", config.ConfigFileName)
		os.Exit(1)
	}

	if err := config.Default().Save(config.ConfigFileName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", config.ConfigFileName)
}

// cmdVersion 输出版本号
func cmdVersion() {
	fmt.Printf("tryelse %s\n", Version)
}

// buildLogger 按配置构建日志器，失败时退回 Nop
func buildLogger(cfg *config.Config) *zap.Logger {
	log, err := cfg.BuildLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return zap.NewNop()
	}
	return log
}
