package interactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/selfai-labs/selfai/src/companions"
)

const fallbackPostTopic = "trending topics"

// PersonaContext is the system framing used for every generation call of a companion.
func PersonaContext(c companions.Companion) string {
	tone := c.Tone
	if tone == "" {
		tone = "conversational"
	}
	expertise := c.Expertise
	if len(expertise) == 0 {
		expertise = []string{"general"}
	}
	return fmt.Sprintf("Name: %s\nPersonality: %s\nSystem Prompt: %s\nTone: %s\nExpertise: %s",
		c.Name, c.Personality, c.SystemPrompt, tone, strings.Join(expertise, ", "))
}

// TaskPrompt builds the user prompt for an action. topic replaces an empty
// Post context.
func TaskPrompt(persona string, action companions.ActionType, actionContext, topic string) string {
	switch action {
	case companions.ActionPost:
		subject := actionContext
		if strings.TrimSpace(subject) == "" {
			subject = topic
		}
		return fmt.Sprintf("%s\nGenerate an engaging Farcaster post based on: %s\nMax 320 characters. Be authentic and add value.", persona, subject)
	case companions.ActionReply:
		return fmt.Sprintf("%s\nReply to this cast: %s\nMax 320 characters. Be thoughtful and add value.", persona, actionContext)
	case companions.ActionSummarize:
		return fmt.Sprintf("%s\nSummarize this content concisely: %s\nKeep it under 200 characters.", persona, actionContext)
	default:
		return persona + "\n\n" + actionContext
	}
}

func (d *Dispatcher) taskPrompt(ctx context.Context, persona string, req Request) string {
	topic := fallbackPostTopic
	if req.ActionType == companions.ActionPost && strings.TrimSpace(req.Context) == "" && d.trends != nil {
		if topics := d.trends.Topics(ctx, promptTrendingTopic); len(topics) > 0 {
			topic = "trending topics: " + strings.Join(topics, "; ")
		}
	}
	return TaskPrompt(persona, req.ActionType, req.Context, topic)
}
