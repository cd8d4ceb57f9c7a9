package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	aicore "github.com/selfai-labs/selfai/src/ai/core"
	"github.com/selfai-labs/selfai/src/companions"
	"github.com/selfai-labs/selfai/src/config"
	"github.com/selfai-labs/selfai/src/interactions"
)

var allProviders = []string{"openai", "claude", "gemini", "deepseek"}

var smoketestCmd = &cobra.Command{
	Use:   "smoketest",
	Short: "Generate a sample post with each configured provider",
	Long:  `Builds the same persona and post prompt the service uses and sends it to one or more generation providers. Nothing is published.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetString("providers")
		topic, _ := cmd.Flags().GetString("topic")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		providers := resolveProviders(raw)
		if len(providers) == 0 {
			return fmt.Errorf("no providers specified")
		}

		persona := interactions.PersonaContext(sampleCompanion())
		prompt := interactions.TaskPrompt(persona, companions.ActionPost, topic, "trending topics")

		out := cmd.OutOrStdout()
		failed := 0
		for _, provider := range providers {
			if err := runProvider(cmd.Context(), out, cfg, provider, persona, prompt, timeout); err != nil {
				fmt.Fprintf(out, "[%s] ERROR: %v\n", provider, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d providers failed", failed, len(providers))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(smoketestCmd)
	smoketestCmd.Flags().String("providers", "openai", "Comma-separated provider list or 'all'")
	smoketestCmd.Flags().String("topic", "the first week of Farcaster frames", "Post context")
	smoketestCmd.Flags().Duration("timeout", 45*time.Second, "Per-provider timeout")
}

func sampleCompanion() companions.Companion {
	return companions.Companion{
		Name:         "Nova",
		Personality:  "Curious and upbeat explorer of onchain culture",
		SystemPrompt: "You write short, friendly casts without hashtags.",
		Tone:         "conversational",
		Expertise:    []string{"web3", "farcaster"},
	}
}

func runProvider(ctx context.Context, out io.Writer, cfg config.Config, provider, persona, prompt string, timeout time.Duration) error {
	client, err := aicore.NewClient(aicore.FactoryConfig{
		Provider:    provider,
		Model:       cfg.AIModel,
		OpenAIKey:   cfg.OpenAIKey,
		ClaudeKey:   cfg.ClaudeKey,
		GeminiKey:   cfg.GeminiKey,
		DeepSeekKey: cfg.DeepSeekKey,
		Timeout:     timeout,
	})
	if err != nil {
		return fmt.Errorf("client init: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, err := client.Generate(ctx, persona, prompt, aicore.Options{MaxCompletionTokens: 200})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "=== %s (%.1fs, %d chars) ===\n%s\n", provider, time.Since(start).Seconds(), len([]rune(reply)), reply)
	return nil
}

func resolveProviders(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.EqualFold(raw, "all") {
		return append([]string{}, allProviders...)
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var out []string
	seen := map[string]struct{}{}
	for _, p := range parts {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
