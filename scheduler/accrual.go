// Package scheduler runs the recurring ROI accrual sweep. The sweep walks
// active investments, credits every ROI period that has elapsed since the
// last sweep, and completes investments whose end date has passed.
//
// Idempotence: the number of periods already paid is persisted on the
// investment (periods_credited) and advanced in the same DB transaction that
// posts the profit, so a crashed or repeated sweep never credits a period
// twice. Mutual exclusion: a redis SetNX lease serializes sweeps across
// processes; without redis an in-process try-lock covers the single-instance
// case.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"project/ledger"
	"project/models"
	"project/utils"

	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	lockKey = "roi:accrual:lock"
	lockTTL = 5 * time.Minute
)

type AccrualJob struct {
	DB    *gorm.DB
	Redis *redis.Client

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

func NewAccrualJob(db *gorm.DB, rdb *redis.Client) *AccrualJob {
	return &AccrualJob{DB: db, Redis: rdb, Now: time.Now}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (j *AccrualJob) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("[accrual] sweep loop started, interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[accrual] sweep loop stopped")
			return
		case <-ticker.C:
			processed, err := j.Sweep(ctx)
			if err != nil {
				log.Printf("[accrual] sweep error: %v", err)
			} else if processed > 0 {
				log.Printf("[accrual] sweep credited %d investment(s)", processed)
			}
		}
	}
}

// Sweep processes every active investment once. Returns the number of
// investments that were credited or completed. When another sweep holds the
// lock it returns (0, nil) without doing work.
func (j *AccrualJob) Sweep(ctx context.Context) (int, error) {
	release, ok := j.acquireLock(ctx)
	if !ok {
		return 0, nil
	}
	defer release()

	now := j.Now()
	var due []models.Investment
	if err := j.DB.WithContext(ctx).
		Where("status = ?", models.InvestmentActive).
		Find(&due).Error; err != nil {
		return 0, err
	}

	processed := 0
	for i := range due {
		inv := due[i]
		err := j.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			changed, err := accrueOne(tx, inv.ID, now)
			if err != nil {
				return err
			}
			if changed {
				processed++
			}
			return nil
		})
		if err != nil {
			log.Printf("[accrual] investment %d: %v", inv.ID, err)
		}
	}
	return processed, nil
}

// accrueOne credits the owed periods for a single investment and completes it
// when its end date is reached. Runs inside a DB transaction; the investment
// is re-read there so a concurrent sweep that already advanced the marker is
// observed.
func accrueOne(tx *gorm.DB, invID uint, now time.Time) (bool, error) {
	var inv models.Investment
	if err := tx.First(&inv, invID).Error; err != nil {
		return false, err
	}
	if inv.Status != models.InvestmentActive {
		return false, nil
	}

	owed := inv.ElapsedPeriods(now) - inv.PeriodsCredited
	if owed < 0 {
		owed = 0
	}

	updates := map[string]interface{}{}
	if owed > 0 {
		profit, newAmount := periodProfit(&inv, owed)
		msg := "Investment returns"
		rec := models.Transaction{
			UserID:  inv.UserID,
			PlanID:  &inv.PlanID,
			Type:    models.TxProfit,
			Amount:  profit,
			Message: &msg,
			Status:  models.TxCompleted,
		}
		if err := ledger.Record(tx, &rec); err != nil {
			return false, err
		}

		credited := inv.PeriodsCredited + owed
		lastCredited := inv.StartDate.Add(time.Duration(credited) * inv.PeriodDuration())
		updates["periods_credited"] = credited
		updates["last_credited"] = lastCredited
		if inv.RoiType == models.RoiCompounded {
			updates["amount"] = newAmount
		}
		inv.PeriodsCredited = credited
	}

	if !now.Before(inv.EndDate) || inv.PeriodsCredited >= inv.TotalPeriods() {
		updates["status"] = models.InvestmentCompleted

		// Return the committed principal to the main wallet, mirroring the
		// direct deduction made at investment creation.
		res := tx.Model(&models.User{}).Where("id = ?", inv.UserID).
			UpdateColumn("main_wallet", gorm.Expr("main_wallet + ?", inv.InitialAmount))
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected == 0 {
			return false, ledger.ErrNoWallet
		}

		msg := "Investment principal returned"
		rec := models.Transaction{
			UserID:  inv.UserID,
			PlanID:  &inv.PlanID,
			Type:    models.TxInvestment,
			Amount:  inv.InitialAmount,
			Message: &msg,
			Status:  models.TxCompleted,
		}
		if err := ledger.Record(tx, &rec); err != nil {
			return false, err
		}
	}

	if len(updates) == 0 {
		return false, nil
	}
	if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
		return false, err
	}
	return true, nil
}

// periodProfit computes the profit owed for n periods. Flat pays rate on the
// initial amount every period; compounded pays rate on the running amount and
// folds each period's profit back into it. Returns the total profit and the
// new running amount.
func periodProfit(inv *models.Investment, n int) (float64, float64) {
	rate := inv.RoiRate / 100.0
	if inv.RoiType == models.RoiCompounded {
		amount := inv.Amount
		total := 0.0
		for i := 0; i < n; i++ {
			p := utils.Round2(amount * rate)
			total += p
			amount = utils.Round2(amount + p)
		}
		return utils.Round2(total), amount
	}
	return utils.Round2(inv.InitialAmount * rate * float64(n)), inv.Amount
}

// acquireLock serializes sweeps. With redis the lease also excludes other
// process instances; the returned release function drops it.
func (j *AccrualJob) acquireLock(ctx context.Context) (func(), bool) {
	if j.Redis != nil {
		ok, err := j.Redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil {
			// Redis outage: fall through to the in-process lock rather than
			// stalling accrual entirely.
			log.Printf("[accrual] redis lock error: %v", err)
		} else if !ok {
			return nil, false
		} else {
			return func() { j.Redis.Del(context.Background(), lockKey) }, true
		}
	}
	if !j.mu.TryLock() {
		return nil, false
	}
	return j.mu.Unlock, true
}
