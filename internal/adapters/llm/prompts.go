package llm

import "fmt"

type eventFacts struct {
	Title    string
	Start    string
	End      string
	Kind     string
	AllDay   bool
	Category string
}

func extractPrompt(input, now string) string {
	return fmt.Sprintf(`Extract one calendar event from the input below and return it as JSON.

Input: %s
Current time: %s

Return exactly this shape:
{
    "title": "event title",
    "start_datetime": "YYYY-MM-DD HH:MM",
    "end_datetime": "YYYY-MM-DD HH:MM",
    "event_type": "activity",
    "priority": 3,
    "is_all_day": false,
    "category": ["category1", "category2"]
}

Rules:
- start_datetime is required.
- If the end is not stated, set end_datetime to one hour after start_datetime.
- event_type is one of:
  * "activity": a timed event such as a meeting or a date
  * "block": a span such as a training camp or an exam period
  * "deadline": a due date
- priority is an integer from 1 (most important) to 5 (least important).
- is_all_day is true for all-day events and false for timed ones.
- category lists the topics of the event, e.g. "exam study" -> ["exam", "study"], "training camp" -> ["camp", "overnight"].
- Words such as "all day" mean is_all_day=true.
- Multi-day spans ("period", "camp", "from X to Y") are event_type="block" with is_all_day=true,
  starting at 00:00 on the first day and ending at 23:59 on the last day.
- Explicit start and end times mean event_type="activity".
- Keep the title in the language of the input.

Reply with the JSON only, no explanation.`, input, now)
}

func periodPrompt(phrase, now string) string {
	return fmt.Sprintf(`Convert the period "%s" into a date-time range.
Current time: %s

Return exactly this shape:
{
    "start": "YYYY-MM-DD 00:00",
    "end": "YYYY-MM-DD 23:59"
}

Examples:
- "today" -> today 00:00 to 23:59
- "tomorrow" -> tomorrow 00:00 to 23:59
- "this week" -> Monday 00:00 to Sunday 23:59 of the current week

Reply with the JSON only.`, phrase, now)
}

func conflictPrompt(candidate, existing eventFacts) string {
	return fmt.Sprintf(`The two events below overlap. Write a warning for the user.

New event:
- Title: %s
- Time: %s to %s
- Type: %s
- All day: %t
- Categories: %s

Existing event:
- Title: %s
- Time: %s to %s
- Type: %s
- All day: %t
- Categories: %s

Guidance:
1. Timed vs timed: say they overlap completely.
2. All-day vs timed: "There is <X> on this day; is the time OK?"
3. Block vs dated event: "This falls during <X>; is that OK?"

Write one short sentence in the language of the event titles. Reply with the sentence only.`,
		candidate.Title, candidate.Start, candidate.End, candidate.Kind, candidate.AllDay, candidate.Category,
		existing.Title, existing.Start, existing.End, existing.Kind, existing.AllDay, existing.Category)
}
