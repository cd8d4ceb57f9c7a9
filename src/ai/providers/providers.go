// Package providers registers every built-in text generation provider.
package providers

import (
	_ "github.com/selfai-labs/selfai/src/ai/anthropic"
	_ "github.com/selfai-labs/selfai/src/ai/deepseek"
	_ "github.com/selfai-labs/selfai/src/ai/gemini"
	_ "github.com/selfai-labs/selfai/src/ai/openai"
)
