package prompt

import "github.com/fwojciec/prreview"

var builtin = map[prreview.PromptKind]string{
	prreview.PromptSummary:     summaryTemplate,
	prreview.PromptBugs:        bugsTemplate,
	prreview.PromptPerformance: performanceTemplate,
	prreview.PromptSecurity:    securityTemplate,
}

const summaryTemplate = `Analyze the following code change (diff).

Diff:
{{.diff_text}}

Return ONLY this JSON object and no other text:
{
    "summary": "1-2 sentence description",
    "severity": "low",
    "type": "bugfix"
}

Example answer:
{"summary": "Added a nil check before dereferencing the user", "severity": "medium", "type": "bugfix"}
`

const bugsTemplate = `Find possible bugs, problems or risky areas in the following code change (diff).

Diff:
{{.diff_text}}

Answer ONLY in this JSON format (no other text):
{
    "issues": [
        {
            "file": "path/to/file.go",
            "line": 12,
            "severity": "critical | high | medium | low",
            "description": "What is wrong here?",
            "suggestion": "How can it be fixed?"
        }
    ],
    "has_bugs": true | false,
    "overall_risk": "low | medium | high"
}

If there are no problems, "issues" may be an empty list.
`

const performanceTemplate = `Evaluate the following code change (diff) for performance.

Diff:
{{.diff_text}}

Answer ONLY in this JSON format (no other text):
{
    "suggestions": [
        {
            "file": "path/to/file.go",
            "line": 5,
            "issue": "This loop runs a query per iteration and may be slow",
            "recommendation": "Batch the queries outside the loop"
        }
    ],
    "optimization_potential": "low | medium | high"
}
`

const securityTemplate = `Check the following code change (diff) for security problems.

Diff:
{{.diff_text}}

Answer ONLY in this JSON format (no other text):
{
    "vulnerabilities": [
        {
            "file": "path/to/file.go",
            "line": 15,
            "risk": "SQL injection risk",
            "recommendation": "Use parameterized queries"
        }
    ],
    "has_security_issues": true | false,
    "security_level": "safe | caution | dangerous"
}
`
