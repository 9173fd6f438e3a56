package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shaiso/botlink/internal/agent"
	"github.com/shaiso/botlink/internal/report"
)

// runExampleAutomation — демонстрационная автоматизация.
//
// Показывает полный цикл работы с handle задачи: параметры,
// логи, KPI, прогресс и обязательный Finish с итоговыми счётчиками.
// Реальные боты подставляют сюда свою логику с той же сигнатурой.
func runExampleAutomation(ctx context.Context, t *agent.Task) error {
	t.LogInfo(ctx, "=== example automation started ===")

	totalItems := t.GetInt("total_items", 1)
	delay := t.GetFloat("delay_seconds", 1)
	simulateErrors := t.GetBool("simulate_errors", false)

	t.LogInfo(ctx, fmt.Sprintf("processing %d items with %.1fs delay", totalItems, delay))

	t.OnCleanup(func() {
		// Место для закрытия браузера, соединений, временных файлов.
	})

	processed := 0
	failed := 0

	for i := 0; i < totalItems; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("automation interrupted: %w", err)
		}

		itemID := fmt.Sprintf("item_%04d", i+1)
		t.LogInfo(ctx, "processing "+itemID)

		time.Sleep(time.Duration(delay * float64(time.Second)))

		if simulateErrors && rand.Float64() < 0.1 {
			failed++
			t.LogError(ctx, fmt.Sprintf("failed to process %s: simulated error", itemID))
			t.NewKpiEntry(ctx, "vendas_detalhes", map[string]any{
				"item_id": itemID,
				"status":  "falha",
			})
			continue
		}

		t.NewKpiEntry(ctx, "vendas_detalhes", map[string]any{
			"item_id":   itemID,
			"valor":     100 + rand.Intn(900),
			"categoria": []string{"A", "B", "C"}[rand.Intn(3)],
			"status":    "processado",
		})
		processed++

		if (i+1)%10 == 0 {
			msg := fmt.Sprintf("progress: %d/%d", i+1, totalItems)
			if err := t.Progress(ctx, msg, totalItems, processed, failed); err != nil {
				return err
			}
		}
	}

	t.NewKpiEntry(ctx, "resumo_execucao", map[string]any{
		"total_processado": processed,
		"total_falharam":   failed,
		"taxa_sucesso":     successRate(processed, totalItems),
	})

	status := report.StatusCompleted
	message := fmt.Sprintf("all %d items processed", processed)
	switch {
	case failed > 0 && processed > 0:
		status = report.StatusPartiallyCompleted
		message = fmt.Sprintf("%d items processed, %d failed", processed, failed)
	case failed > 0:
		status = report.StatusError
		message = fmt.Sprintf("all %d items failed", failed)
	}

	t.LogInfo(ctx, "=== example automation finished ===")
	return t.Finish(ctx, status, message, totalItems, processed, failed)
}

func successRate(processed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(processed) / float64(total) * 100
}
