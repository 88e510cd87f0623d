package voice

import (
	"fmt"
	"strings"
	"time"

	"troskovi/internal/category"
	"troskovi/internal/core"
)

// buildPrompt assembles the model instructions for one transcript. The known
// shop names, categories and income types are embedded so the model maps
// colloquial Serbian shop mentions onto stored values instead of inventing
// new spellings.
func buildPrompt(transcript string, today time.Time) string {
	var b strings.Builder

	b.WriteString("You are a personal finance assistant that converts a spoken sentence into a transaction.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Read the transcribed sentence below. It may be in Serbian or English.\n")
	b.WriteString("- Decide whether it describes an expense or an income.\n")
	b.WriteString("- Output STRICT JSON only: a single object, no comments, no extra text.\n\n")

	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"type\": string, \"expense\" or \"income\"\n")
	b.WriteString("- \"amount\": number, greater than zero\n")
	b.WriteString("- \"currency\": string, \"EUR\" or \"RSD\" (dinars means RSD, evra means EUR)\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\", or null when no date is mentioned\n")
	b.WriteString("For expenses additionally:\n")
	b.WriteString("- \"shopName\": string, the shop that was paid\n")
	b.WriteString("- \"productDescription\": string or null\n")
	b.WriteString("- \"category\": string, one of the predefined categories, or null\n")
	b.WriteString("For incomes additionally:\n")
	b.WriteString("- \"source\": string, who paid\n")
	b.WriteString("- \"description\": string or null\n")
	b.WriteString("- \"incomeType\": string, one of the predefined income types, or null\n\n")

	b.WriteString("Known shops (prefer an exact value from this list when the sentence mentions one of them):\n")
	b.WriteString(strings.Join(category.SerbianShops, ", "))
	b.WriteString("\n\nCategories:\n")
	b.WriteString(strings.Join(category.ExpenseCategories, ", "))
	b.WriteString("\n\nIncome types:\n")
	b.WriteString(strings.Join(core.IncomeTypes, ", "))

	fmt.Fprintf(&b, "\n\nToday is %s. Resolve relative dates like \"juce\" (yesterday) against it.\n\n", today.Format("2006-01-02"))

	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n\n")

	fmt.Fprintf(&b, "Sentence: %q\n", transcript)
	return b.String()
}
