// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"strings"

	"google.golang.org/genai"

	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/model"
)

// =============================================================================
// PERSONA OVERLAYS
// =============================================================================

// Mode overlays replace the base persona entirely. Precedence when several
// could apply: make-app, then math, then checker.
const (
	makeAppInstruction = "You are a Senior Software Architect and Master Developer. " +
		"Provide full directory structures, complete source code (no placeholders), " +
		"and compilation instructions. Prefer Python, C#, or Node.js."

	mathInstruction = "You are a strict and precise Mathematician. " +
		"1. Analyze the problem. 2. Show step-by-step derivation. 3. Verify the result. " +
		"4. Use LaTeX for formulas where appropriate. " +
		"5. If the user provides an image, solve the problem in the image."

	checkerInstruction = "You are an AI QA Auditor and Fact Checker. " +
		"Your job is to ANALYZE the input for: 1. Logical errors. 2. Code bugs. " +
		"3. Factual inaccuracies. 4. AI-generated patterns. " +
		"Provide a 'Confidence Score', 'Error List', and 'Corrected Version'."

	// fastSuffix is appended when fast thinking is active.
	fastSuffix = " Prioritize speed and brevity."
)

// focusedTemperature overrides the configured temperature for math and
// checker modes, where determinism beats creativity.
const focusedTemperature = 0.2

// Instructions resolves the effective system instruction for the settings.
func Instructions(gen config.GenerationConfig) string {
	instructions := gen.SystemInstruction

	switch {
	case gen.MakeApp:
		instructions = makeAppInstruction
	case gen.Mode == config.ModeMath:
		instructions = mathInstruction
	case gen.Mode == config.ModeChecker:
		instructions = checkerInstruction
	}

	if gen.Thinking.Kind == config.ThinkingFast {
		instructions += fastSuffix
	}
	return instructions
}

// SamplingTemperature resolves the effective temperature for the settings.
func SamplingTemperature(gen config.GenerationConfig) float64 {
	if gen.Mode == config.ModeMath || gen.Mode == config.ModeChecker {
		return focusedTemperature
	}
	return gen.Temperature
}

// GenerateConfig builds the request configuration for a chat turn against
// the given model.
func GenerateConfig(gen config.GenerationConfig, modelName string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(SamplingTemperature(gen))),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(Instructions(gen))},
		},
	}

	// Thinking budgets only apply to preview models; others ignore or
	// reject the field.
	if strings.Contains(modelName, "preview") {
		if budget, fixed := gen.Thinking.EffectiveBudget(); fixed {
			cfg.ThinkingConfig = &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr(budget),
			}
		}
	}

	if gen.WebSearch || gen.DoubleResearch {
		cfg.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	}

	return cfg
}

// BuildContents converts the conversation into request contents: history
// first, then the new message with its attachments. Empty backend turns
// (interrupted streams) are dropped.
func BuildContents(history []model.Message, message string, attachments []model.Attachment) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)

	for _, msg := range history {
		if msg.Role == model.RoleModel && msg.Content == "" {
			continue
		}

		var parts []*genai.Part
		for _, att := range msg.Attachments {
			parts = append(parts, genai.NewPartFromBytes(att.Data, att.MimeType))
		}
		if msg.Content != "" {
			parts = append(parts, genai.NewPartFromText(msg.Content))
		}
		if len(parts) == 0 {
			continue
		}

		contents = append(contents, &genai.Content{
			Role:  string(msg.Role),
			Parts: parts,
		})
	}

	var current []*genai.Part
	for _, att := range attachments {
		current = append(current, genai.NewPartFromBytes(att.Data, att.MimeType))
	}
	current = append(current, genai.NewPartFromText(message))

	return append(contents, &genai.Content{
		Role:  string(model.RoleUser),
		Parts: current,
	})
}
