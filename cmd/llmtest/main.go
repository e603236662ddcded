package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/wolfman30/booking-assistant/cmd/mainconfig"
	"github.com/wolfman30/booking-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/booking-assistant/internal/config"
	"github.com/wolfman30/booking-assistant/internal/site"
	"github.com/wolfman30/booking-assistant/internal/suggestions"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

// Sample bot messages covering the prompt shapes the widget sees most.
var samples = []string{
	"Great news! We have 10:00 AM and 2:30 PM open on Tuesday. Would you like me to book one of those?",
	"Our New Patient Special is $99 and includes a cleaning and x-rays.",
	"Hi! I'm here to help you book an appointment. What can I do for you today?",
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, logging.WithService("llmtest"))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	variant, err := site.Lookup(cfg.SiteVariant)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var awsCfg *aws.Config
	if mainconfig.BedrockEnabled(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("bedrock disabled: %v\n", err)
		} else {
			awsCfg = &loaded
		}
	}

	llm := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if llm == nil {
		fmt.Println("No LLM configured (set GEMINI_API_KEY and/or BEDROCK_MODEL_ID); showing rule-based replies only.")
	}
	gen := suggestions.NewGenerator(llm, variant, logger)

	rule := strings.Repeat("=", 60)
	fmt.Println(rule)
	fmt.Printf("Quick-reply provider check (%s)\n", variant.ClinicName)
	fmt.Println(rule)

	for i, msg := range samples {
		start := time.Now()
		replies := gen.Suggest(ctx, msg, nil)
		fmt.Printf("\n[%d] %s\n    (%v)\n", i+1, msg, time.Since(start).Round(time.Millisecond))
		for _, r := range replies {
			fmt.Printf("    %-28s -> %s\n", r.Label, r.Prompt)
		}
	}
}
