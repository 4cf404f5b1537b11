// Package main is a terminal client for the StreamChat service. It keeps
// one thread alive across a read-eval loop and renders the streamed
// response, reasoning trace included, as it arrives.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/streamchat/chat-service/internal/client"
	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/provider"
)

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", envOr("CHAT_SERVICE_URL", "http://localhost:8080"), "chat service base URL")
	token := flag.String("token", os.Getenv("CHAT_SERVICE_TOKEN"), "bearer token")
	modelID := flag.String("model", envOr("CHAT_MODEL", "openai/gpt-4o-mini"), "model ID")
	reasoning := flag.Bool("reasoning", false, "request a reasoning trace on models that support it")
	effort := flag.String("effort", "", "reasoning effort: low, medium, or high")
	showMetrics := flag.Bool("metrics", true, "print token metrics after each response")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "a bearer token is required (-token or CHAT_SERVICE_TOKEN)")
		os.Exit(1)
	}

	streamClient := client.NewStreamClient(*baseURL, *token, nil)

	fmt.Printf("connected to %s (model %s)\n", *baseURL, *modelID)
	fmt.Println("type a message and press enter; /quit exits, /new starts a fresh thread")

	var threadID string
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "/quit":
			return
		case input == "/new":
			threadID = ""
			fmt.Println("started a new thread")
			continue
		}

		threadID = runExchange(streamClient, threadID, input, *modelID, *reasoning, *effort, *showMetrics)
	}
}

// runExchange streams one message and returns the thread ID to reuse for
// the next turn.
func runExchange(streamClient *client.StreamClient, threadID, content, modelID string, reasoning bool, effort string, showMetrics bool) string {
	var (
		nextThreadID = threadID
		inReasoning  bool
		finalMetrics *models.TokenMetrics
	)

	handlers := client.Handlers{
		OnThreadInfo: func(id string) {
			if threadID == "" {
				fmt.Printf("[thread %s]\n", id)
			}
			nextThreadID = id
		},
		OnReasoningChunk: func(delta, _ string, _ *models.TokenMetrics) {
			if !inReasoning {
				fmt.Print("(reasoning) ")
				inReasoning = true
			}
			fmt.Print(delta)
		},
		OnAIChunk: func(delta, _ string, _ *models.TokenMetrics) {
			if inReasoning {
				fmt.Print("\n\n")
				inReasoning = false
			}
			fmt.Print(delta)
		},
		OnAnnotations: func(annotations []provider.Annotation) {
			for _, a := range annotations {
				if a.URLCitation != nil {
					fmt.Printf("\n[source] %s\n", a.URLCitation.URL)
				}
			}
		},
		OnComplete: func(result *client.ExchangeResult) {
			finalMetrics = result.TokenMetrics
		},
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
		},
	}

	err := streamClient.Stream(context.Background(), &client.StreamRequest{
		ThreadID:        threadID,
		Content:         content,
		ModelID:         modelID,
		UseReasoning:    reasoning,
		ReasoningEffort: effort,
	}, handlers)

	fmt.Println()
	if err == nil && showMetrics && finalMetrics != nil {
		fmt.Printf("[%d tokens, %.1f tok/s, $%.4f]\n",
			finalMetrics.OutputTokens,
			finalMetrics.TokensPerSecond,
			finalMetrics.EstimatedCost.Total)
	}

	return nextThreadID
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
