package telegram

import (
	"fmt"
	"strings"

	"calorie-buddy/internal/food"
	"calorie-buddy/internal/metrics"
	"calorie-buddy/internal/planner"
	"calorie-buddy/internal/summary"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape makes model or user supplied text safe inside legacy Markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatSummaryMarkdown(d summary.Daily) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Daily Summary* (%s)\n\n", d.Date)
	fmt.Fprintf(&sb, "🎯 Target: %.0f kcal\n", d.DailyTarget)
	fmt.Fprintf(&sb, "🍽 Consumed: %.0f kcal\n", d.Consumed.Calories)
	fmt.Fprintf(&sb, "⏳ Remaining: %.0f kcal\n\n", d.Remaining.Calories)
	fmt.Fprintf(&sb, "*Macros*: P %.0fg • C %.0fg • F %.0fg • Fiber %.0fg\n",
		d.Consumed.Protein, d.Consumed.Carbs, d.Consumed.Fat, d.Consumed.Fiber)

	if d.EntriesCount == 0 {
		sb.WriteString("\n_No entries logged_\n")
		return sb.String()
	}

	for _, slot := range []struct {
		title   string
		entries []food.Entry
	}{
		{"Breakfast", d.Meals.Breakfast},
		{"Lunch", d.Meals.Lunch},
		{"Dinner", d.Meals.Dinner},
		{"Snack", d.Meals.Snack},
	} {
		if len(slot.entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n*%s*\n", slot.title)
		for _, e := range slot.entries {
			fmt.Fprintf(&sb, "• %s: %.0f kcal\n", escape(e.FoodName), e.Calories)
		}
	}
	return sb.String()
}

func formatPlanMarkdown(res planner.Result) string {
	p := res.Plan
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *Meal Plan* for %s\n", p.Date)

	for _, meal := range []struct {
		title string
		items []planner.MealItem
	}{
		{"Breakfast", p.Breakfast},
		{"Lunch", p.Lunch},
		{"Dinner", p.Dinner},
		{"Snacks", p.Snacks},
	} {
		if len(meal.items) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n*%s*\n", meal.title)
		for _, it := range meal.items {
			fmt.Fprintf(&sb, "• %s: %.0f kcal\n", escape(it.Name), it.Calories)
			if it.Description != "" {
				fmt.Fprintf(&sb, "_%s_\n", escape(it.Description))
			}
		}
	}

	fmt.Fprintf(&sb, "\n*Totals*: %.0f kcal • P %.0fg • C %.0fg • F %.0fg\n",
		p.TotalCalories, p.TotalProtein, p.TotalCarbs, p.TotalFat)
	if res.NutritionalNotes != "" {
		fmt.Fprintf(&sb, "\n📝 %s\n", escape(res.NutritionalNotes))
	}
	return sb.String()
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String()
}
