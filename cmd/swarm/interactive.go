package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/codecollab/swarm/internal/config"
)

func runInteractive() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	color.Yellow("Initializing swarm agents...")
	s, cleanup, err := buildSwarm(cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()
	color.Green("Swarm ready!")

	printBanner()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println()
		color.Cyan("Interrupted. Goodbye!")
		cancel()
		os.Exit(0)
	}()

	color.Green("\nINTERACTIVE MODE")
	fmt.Println("Enter your development tasks. Type 'exit' or 'quit' to stop.")
	fmt.Println("Type 'help' for example tasks.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		color.Yellow(strings.Repeat("-", 80))
		fmt.Print(color.New(color.Bold).Sprint("Enter task > "))

		if !scanner.Scan() {
			fmt.Println()
			color.Cyan("Goodbye!")
			return scanner.Err()
		}

		task := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(task) {
		case "":
			continue
		case "exit", "quit", "q":
			color.Cyan("Goodbye!")
			return nil
		case "help":
			printExamples()
			continue
		}

		printTaskHeader(task)
		color.Yellow("Processing with swarm agents...")

		result, err := s.Process(ctx, task)
		if err != nil {
			color.Red("Error processing task: %v", err)
			continue
		}
		printResult(result)
	}
}

func printBanner() {
	rule := strings.Repeat("=", 80)
	color.Cyan(rule)
	color.New(color.Bold).Println("                    CodeCollab Swarm Orchestrator")
	color.Cyan(rule)
	color.Yellow("AI-powered development assistant with 5 specialized agents:")
	fmt.Println("  1. Requirements Agent - Analyzes and structures requirements")
	fmt.Println("  2. Context Agent      - Understands codebase and patterns")
	fmt.Println("  3. Builder Agent      - Writes production-quality code")
	fmt.Println("  4. Quality Agent      - Verifies and tests implementation")
	fmt.Println("  5. Escalation Agent   - Decides completion or human handoff")
	color.Cyan(rule)
}

func printExamples() {
	color.Cyan("\nEXAMPLE TASKS:")
	color.New(color.Bold).Println("\nSimple:")
	fmt.Println("  - Create a function to calculate factorial")
	fmt.Println("  - Write a class for managing a todo list")
	color.New(color.Bold).Println("\nMedium:")
	fmt.Println("  - Create a REST API endpoint for user authentication")
	fmt.Println("  - Implement a binary search tree with insertion and deletion")
	color.New(color.Bold).Println("\nComplex:")
	fmt.Println("  - Design a microservice for payment processing")
	fmt.Println("  - Implement real-time chat with WebSocket")
	color.Yellow("\nTip: Be specific about requirements for better results!")
}
