package repository

import "fmt"

// AnalysisMode selects which prompt shape to build for a message.
type AnalysisMode string

const (
	ModeChartAnalysis AnalysisMode = "chart_analysis"
	ModeCoaching      AnalysisMode = "coaching"
	ModeGeneral       AnalysisMode = "general"
)

// BuildChatPrompt returns the prompt for the given analysis mode.
func BuildChatPrompt(mode AnalysisMode, content string) string {
	switch mode {
	case ModeChartAnalysis:
		return buildChartAnalysisPrompt(content)
	case ModeCoaching:
		return buildCoachingPrompt(content)
	default:
		return buildGeneralPrompt(content)
	}
}

func buildChartAnalysisPrompt(content string) string {
	return fmt.Sprintf(`You are an experienced trading coach reviewing a trader's chart screenshot.

Look at the attached chart and the trader's note below. Give a short, direct assessment covering:
- Trend direction and whether the entry goes with or against it
- The nearest support/resistance and how the entry relates to it
- Volume behavior around the setup
- Whether the risk/reward of the described idea is acceptable

Keep the tone of a coach talking to their trader: direct, specific, no filler. Maximum 3 short paragraphs. Do not give financial advice disclaimers.

Trader's note:
%s
`, content)
}

func buildCoachingPrompt(content string) string {
	return fmt.Sprintf(`You are a trading psychology coach. The trader below is describing how they feel about their trading right now.

Respond as a coach would in chat: acknowledge what they are feeling in one sentence, then give one concrete, actionable suggestion for their next session. Do not lecture, do not list more than one suggestion, maximum 2 short paragraphs.

Trader's message:
%s
`, content)
}

func buildGeneralPrompt(content string) string {
	return fmt.Sprintf(`You are an experienced trading coach chatting with a trader. Answer their message below concisely and practically, in at most 2 short paragraphs. Stay on trading topics.

Trader's message:
%s
`, content)
}
