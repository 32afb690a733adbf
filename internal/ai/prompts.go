package ai

import (
	"fmt"
	"strings"

	"github.com/digimosa/exif-inspector/internal/models"
)

const explainTemplate = `You are a photo forensics assistant. An automated EXIF check produced the verdict below.
Explain in at most two sentences, in plain language, what the verdict means for someone deciding whether the photo is an untouched camera original.
Do not invent evidence and do not change the verdict.

File: %s
Verdict: %s (confidence %.0f%%)
Indicators:
%s
Warnings:
%s`

func bullets(items []string) string {
	if len(items) == 0 {
		return "- none"
	}
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
	return sb.String()
}

func buildPrompt(r models.Report) string {
	ic := r.IntegrityCheck
	verdict := "no signs of modification"
	if ic.IsModified {
		verdict = "likely modified"
	}
	return fmt.Sprintf(explainTemplate, r.FileName, verdict, ic.Confidence*100, bullets(ic.Indicators), bullets(ic.Warnings))
}
