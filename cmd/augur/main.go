package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/augurbot/augur/internal/config"
	"github.com/augurbot/augur/internal/provider/gitlab"
	"github.com/joho/godotenv"
)

var version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "diff":
		runDiff(os.Args[2:])
	case "comment":
		runComment(os.Args[2:])
	case "version":
		fmt.Printf("augur v%s\n", version)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: augur <command> [options] <merge-request-url>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  diff     Print the merge request's changes, submodules expanded")
	fmt.Println("  comment  Post a comment on the merge request")
	fmt.Println("  version  Print version information")
}

// newProvider loads configuration and builds a provider for the MR URL.
func newProvider(configPath, envFile, mrURL string) (*gitlab.Provider, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("Warning: could not load env file %s: %v", envFile, err)
		}
	} else {
		// Try default locations
		godotenv.Load(".env")
		godotenv.Load("/etc/augur/augur.env")
	}

	token := os.Getenv("GITLAB_TOKEN")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if cfg.GitLab.Token != "" {
			token = cfg.GitLab.Token
		}
	}
	if token == "" {
		return nil, fmt.Errorf("no GitLab token configured (set GITLAB_TOKEN or gitlab.token)")
	}

	return gitlab.New(token, mrURL)
}

func runDiff(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (optional)")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Println("Usage: augur diff [options] <merge-request-url>")
		os.Exit(1)
	}

	p, err := newProvider(*configPath, *envFile, fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	mr := p.MergeRequest()
	fmt.Printf("!%d %s (%s -> %s)\n", mr.Number, mr.Title, mr.SourceBranch, mr.TargetBranch)

	files, err := p.ChangedFiles(context.Background())
	if err != nil {
		log.Fatalf("Failed to list changes: %v", err)
	}

	for _, f := range files {
		fmt.Printf("%-8s %s\n", f.Status, f.Path)
		fmt.Println(f.Diff)
		for _, d := range f.SubmoduleDiffs {
			fmt.Printf("  submodule %s: %s\n", f.Path, d.NewPath)
			fmt.Println(d.Diff)
		}
	}
}

func runComment(args []string) {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (optional)")
	envFile := fs.String("env-file", "", "Path to .env file (optional)")
	body := fs.String("body", "", "Comment body")
	fs.Parse(args)

	if fs.NArg() != 1 || *body == "" {
		fmt.Println("Usage: augur comment [options] -body <text> <merge-request-url>")
		os.Exit(1)
	}

	p, err := newProvider(*configPath, *envFile, fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	if err := p.PostComment(context.Background(), *body); err != nil {
		log.Fatalf("Failed to post comment: %v", err)
	}
}
