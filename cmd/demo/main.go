package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spetersoncode/duet/session"
)

var reader = bufio.NewReader(os.Stdin)

func main() {
	godotenv.Load()
	ctx := context.Background()

	fmt.Println("╔════════════════════════════════════════╗")
	fmt.Println("║           duet - Client Demo           ║")
	fmt.Println("╚════════════════════════════════════════╝")
	fmt.Println()

	cfg := session.Config{
		APIKey:   os.Getenv("GEMINI_API_KEY"),
		UseLocal: os.Getenv("DUET_USE_LOCAL") == "1",
		Model:    os.Getenv("DUET_MODEL"),
		Endpoint: os.Getenv("OLLAMA_ENDPOINT"),
	}

	if cfg.APIKey == "" && !cfg.UseLocal {
		fmt.Println("No backend configured. Set GEMINI_API_KEY for the cloud backend,")
		fmt.Println("or DUET_USE_LOCAL=1 (plus optional DUET_MODEL / OLLAMA_ENDPOINT)")
		fmt.Println("for a local Ollama server.")
		return
	}

	logLevel := slog.LevelWarn
	if os.Getenv("DUET_DEBUG") == "1" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	s, err := session.New(ctx, cfg, session.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		return
	}

	<-s.Ready()
	fmt.Printf("Backend: %s  Model: %s\n\n", s.Backend(), s.Model())

	status := s.TestConnection(ctx)
	if status.Success {
		fmt.Println("Connection: ✓")
	} else {
		fmt.Printf("Connection: ✗ (%s)\n", status.Error)
	}

	if models := s.ListModels(ctx); len(models) > 0 {
		fmt.Println("\nLocal models:")
		for _, m := range models {
			fmt.Printf("  - %s\n", m.Name)
		}
	}
	fmt.Println()

	if askYesNo("Demo chat?") {
		demoChat(ctx, s)
	}
	if askYesNo("Demo image description?") {
		demoDescribeImage(ctx, s)
	}
	if askYesNo("Demo structured extraction from screenshots?") {
		demoExtract(ctx, s)
	}

	fmt.Println("\n✨ Demo complete!")
}

func askYesNo(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func demoChat(ctx context.Context, s *session.Session) {
	fmt.Print("You: ")
	message, _ := reader.ReadString('\n')
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Say hello in three different languages, one per line."
	}

	reply, err := s.Chat(ctx, message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("\n%s\n", reply)
}

func demoDescribeImage(ctx context.Context, s *session.Session) {
	fmt.Print("Image path: ")
	path, _ := reader.ReadString('\n')
	path = strings.TrimSpace(path)
	if path == "" {
		fmt.Println("No path given, skipping.")
		return
	}

	result, err := s.DescribeImage(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("\n%s\n[%s]\n", result.Text, result.Timestamp.Format("15:04:05"))
}

func demoExtract(ctx context.Context, s *session.Session) {
	fmt.Print("Screenshot paths (space-separated): ")
	line, _ := reader.ReadString('\n')
	paths := strings.Fields(line)
	if len(paths) == 0 {
		fmt.Println("No paths given, skipping.")
		return
	}

	info, err := s.ExtractFromImages(ctx, paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Printf("\nProblem:   %s\n", info.ProblemStatement)
	fmt.Printf("Context:   %s\n", info.Context)
	fmt.Printf("Reasoning: %s\n", info.Reasoning)
	for i, r := range info.SuggestedResponses {
		fmt.Printf("Response %d: %s\n", i+1, r)
	}

	if !askYesNo("Generate a solution for this problem?") {
		return
	}
	sol, err := s.GenerateSolution(ctx, info)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("\nSolution:\n%s\n\nReasoning: %s\n", sol.Solution.Code, sol.Solution.Reasoning)
}
