package breakdown

import (
	"fmt"
	"strings"
)

// BuildPrompt renders a goal into the instruction sent to the model. The
// output depends only on its arguments.
func BuildPrompt(title, description string, deadline *string) string {
	deadlineText := "\nNo specific deadline provided."
	if deadline != nil && *deadline != "" {
		deadlineText = "\nDeadline: " + *deadline
	}

	var b strings.Builder
	b.WriteString("You are an expert project manager and task breakdown specialist.\n\n")
	fmt.Fprintf(&b, "Goal: %s\nDescription: %s%s\n\n", title, description, deadlineText)
	b.WriteString(`Break down this goal into a detailed, actionable task plan. For each task:
1. Create clear, specific task titles
2. Provide detailed descriptions
3. Estimate hours needed (realistic estimates)
4. Set priority (low, medium, high, critical)
5. Identify dependencies (which tasks must be completed before others)
6. Suggest start and end dates based on the deadline and task order

Return your response as a valid JSON object with this EXACT structure:

{
  "tasks": [
    {
      "title": "Task title",
      "description": "Detailed description of what needs to be done",
      "estimated_hours": 8,
      "priority": "high",
      "dependencies": [],
      "start_date": "2025-10-16",
      "end_date": "2025-10-18"
    }
  ],
  "total_estimated_hours": 40,
  "suggested_timeline": "Brief timeline overview"
}

Rules:
- Create 5-15 tasks depending on goal complexity
- Be specific and actionable
- Consider realistic time estimates
- Identify critical path and dependencies
- Tasks should flow logically
- Use ISO date format (YYYY-MM-DD)
- First tasks should have no dependencies
- Later tasks can depend on earlier ones using the task title

Return ONLY the JSON, no additional text or markdown formatting.`)
	return b.String()
}
