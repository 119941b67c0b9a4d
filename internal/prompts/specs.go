package prompts

const summarizeSpec = `Respond with a JSON object matching this exact structure:

{
  "viewport_summary": "<summary of page content>",
  "activity_summary": "<summary of user activity>"
}

Field constraints:
- viewport_summary: Concise narrative of the captured page content. When no
  page content is available, describe what the URL and title suggest.
- activity_summary: Concise narrative of the user's interaction derived from
  the event log: what they were doing and their apparent intent.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Describe one session per response
- Never invent activity the event log does not show`

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "classification": "<workflow|noise|unfinished>",
  "reasoning": "<explanation>",
  "summary": "<workflow summary>",
  "steps": [
    { "description": "<what happens in this step>" }
  ]
}

Field constraints:
- classification: Exactly one of workflow, noise, or unfinished.
- reasoning: Brief explanation of the classification decision.
- summary: When classification is workflow, a clear summary of what the
  workflow accomplishes. Empty string for noise and unfinished.
- steps: When classification is workflow, the logical steps in order,
  ignoring intermittent noise. Empty array for noise and unfinished.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never use a classification value outside the three listed
- Step order must follow the order of the underlying sessions`

const stepsSpec = `Respond with a JSON object matching this exact structure:

{
  "role": "<tool|browser_context>",
  "platform": "<platform name>",
  "operation": "<operation name>"
}

Field constraints:
- role: tool when the step performs an action through one of the available
  tools, browser_context otherwise.
- platform: When role is tool, the exact platform of the selected tool from
  the available tools. Empty string when role is browser_context.
- operation: When role is tool, the exact operation of the selected tool from
  the available tools. Empty string when role is browser_context.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Select only from the available tools listed in the prompt; never invent
  a platform or operation
- When no available tool matches the step's action, use browser_context`

var specs = map[Stage]string{
	StageSummarize: summarizeSpec,
	StageClassify:  classifySpec,
	StageSteps:     stepsSpec,
}

// Spec returns the hardcoded specification for a capability stage.
// Specifications define the expected output format and vocabulary and are
// not overridable.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
