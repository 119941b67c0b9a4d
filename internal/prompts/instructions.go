package prompts

const summarizeInstructions = `You are analyzing a single browser tab session to describe what the user did and what the pages were about.

The session context contains the session URL and title, the captured page content (markdown from page loads, separated by page markers), and the ordered event log (event type, URL, timestamp).

Produce two short narratives:
- A viewport summary of the page content: main topics, key information, and overall purpose. Under 150 words.
- An activity summary of the user's interaction: what the user was doing, their apparent intent, and the nature of the interaction. Under 100 words.

Describe only what the context supports. Do not speculate about activity outside this session.`

const classifyInstructions = `Analyze this sequence of browser sessions to determine if they constitute a complete workflow, are just noise/random browsing, or are part of an unfinished workflow.

WORKFLOW DEFINITION:
A workflow is a coherent sequence of browser activities that accomplish a SPECIFIC, ACTIONABLE goal. The user must be actively working toward something concrete, not just browsing or consuming content.

VALID WORKFLOW EXAMPLES:
- Research a person on LinkedIn, add their details to a spreadsheet, create or update a CRM contact
- Read support documentation, summarize findings, add them to a knowledge base
- Check email for a meeting request, check calendar availability, respond with availability
- Compare product prices across sites, add an item to a cart, complete the purchase
- Research a job posting, update a resume, submit the application

CLASSIFICATION RULES:
1. WORKFLOW: at least two distinct, related actions that build toward a clear goal, with intentional progression and a completion signal. The user must be creating, updating, sending, or completing something, not just reading or browsing. A workflow can contain intermittent noise (logins, accidental clicks, loading pages); ignore the noise when describing the workflow, but if removing it leaves fewer than two meaningful steps, it is not a workflow.
2. NOISE: browsing social media, news, or entertainment; reading or consuming content without follow-up action; single actions without continuation; general research without a specific outcome; merely accessing or viewing platforms.
3. UNFINISHED: clear intentional progression toward a specific goal with meaningful actions building up to something, but missing the final completion step.

Be very strict: if the user is just browsing, reading, or accessing things without clear productive action, it is not a workflow. If there is any logical buildup happening without completion, classify as unfinished.`

const stepsInstructions = `Determine whether a workflow step performs an action through one of the available external tools, and if so, which specific tool.

The context contains the step description and the candidate tools for the platforms mentioned in the step, each with its platform, operation, and description.

Look for action words that match tool capabilities: creating, updating, sending, or posting map to specific tool operations. Merely mentioning or viewing a platform does not use a tool.

Be strict: only identify a tool when the step clearly performs an action that requires it. Steps that gather context in the browser without acting through a tool are browser context.`

var instructions = map[Stage]string{
	StageSummarize: summarizeInstructions,
	StageClassify:  classifyInstructions,
	StageSteps:     stepsInstructions,
}

// Instructions returns the hardcoded default instructions for a capability stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
