package analytics

import "fmt"

// Options controls aggregation behavior.
type Options struct {
	// LegacyDeleteQuirks reproduces the delete accounting of the system
	// this service replaced: customers decrement unconditionally
	// regardless of customer type, a STITCHED deletion decrements both
	// bill counts on the month bucket, and a SOLD deletion decrements
	// no count at the year and month levels. Kept on by default so
	// rebuilt rollups match the historical ledger; turn off for the
	// corrected accounting.
	LegacyDeleteQuirks bool
}

// Seed builds a brand-new yearly record from the first ADD event of the
// year, with one month bucket and one day bucket mirroring the
// cumulative totals.
func Seed(ev BillEvent) *AnalyticsRecord {
	t := seedTotals(ev)
	return &AnalyticsRecord{
		Year:        ev.Year,
		Totals:      t,
		MonthlyData: []MonthBucket{{Month: MonthKey(ev.Month), Totals: t}},
		DailyData:   []DayBucket{{Day: ev.Day, Totals: t}},
	}
}

// Apply folds one bill event into an existing record in place.
// The record must belong to ev.Year; missing-year handling (seed on
// ADD, no-op on UPDATE/DELETE) is the service layer's concern.
func Apply(rec *AnalyticsRecord, ev BillEvent, opts Options) error {
	if rec.Year != ev.Year {
		return fmt.Errorf("event year %d does not match record year %d", ev.Year, rec.Year)
	}

	switch ev.Action {
	case ActionAdd:
		applyAdd(rec, ev)
	case ActionUpdate:
		applyUpdate(rec, ev)
	case ActionDelete:
		applyDelete(rec, ev, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}
	return nil
}

// seedTotals builds the Totals for a freshly created record or bucket
// from a single ADD event.
func seedTotals(ev BillEvent) Totals {
	t := Totals{
		Income: ev.AmountMinor,
		Profit: ev.AmountMinor,
	}
	if ev.CustomerType == CustomerNew {
		t.Customers = 1
		t.NewCustomers = 1
	}
	if ev.BillType == BillSold {
		t.Sales = ev.AmountMinor
		t.SalesBillCount = 1
	} else {
		t.Stitch = ev.AmountMinor
		t.StitchBillCount = 1
	}
	return t
}

func applyAdd(rec *AnalyticsRecord, ev BillEvent) {
	rec.Income += ev.AmountMinor
	rec.Profit += ev.AmountMinor
	if ev.CustomerType == CustomerNew {
		rec.Customers++
		rec.NewCustomers++
	}
	if ev.BillType == BillSold {
		rec.Sales += ev.AmountMinor
		rec.SalesBillCount++
	} else {
		rec.Stitch += ev.AmountMinor
		rec.StitchBillCount++
	}

	// Existing buckets accrue only income/profit and customer counts;
	// sales/stitch amounts and bill counts are set on bucket creation
	// only. Historical rollups were built this way, so rebuilt buckets
	// must drift identically.
	if mb := rec.monthBucket(MonthKey(ev.Month)); mb != nil {
		mb.Income += ev.AmountMinor
		mb.Profit += ev.AmountMinor
		if ev.CustomerType == CustomerNew {
			mb.Customers++
			mb.NewCustomers++
		}
	} else {
		rec.MonthlyData = append(rec.MonthlyData, MonthBucket{Month: MonthKey(ev.Month), Totals: seedTotals(ev)})
	}

	if db := rec.dayBucket(ev.Day); db != nil {
		db.Income += ev.AmountMinor
		db.Profit += ev.AmountMinor
		if ev.CustomerType == CustomerNew {
			db.Customers++
			db.NewCustomers++
		}
	} else {
		rec.DailyData = append(rec.DailyData, DayBucket{Day: ev.Day, Totals: seedTotals(ev)})
	}
}

// updateDelta applies an UPDATE's signed amount and customer movement
// to one Totals scope. Bill counts never move on UPDATE: an amendment
// changes how much a bill was worth, not how many bills exist.
func updateDelta(t *Totals, ev BillEvent, delta, sign int64) {
	t.Income += delta
	t.Profit += delta
	if ev.BillType == BillSold {
		t.Sales += delta
	} else {
		t.Stitch += delta
	}
	if ev.CustomerType == CustomerNew {
		t.Customers += sign
		t.NewCustomers += sign
	}
}

func applyUpdate(rec *AnalyticsRecord, ev BillEvent) {
	delta := ev.AmountMinor
	sign := int64(1)
	if ev.IsNegative {
		delta = -delta
		sign = -1
	}

	updateDelta(&rec.Totals, ev, delta, sign)

	if mb := rec.monthBucket(MonthKey(ev.Month)); mb != nil {
		updateDelta(&mb.Totals, ev, delta, sign)
	} else {
		var t Totals
		updateDelta(&t, ev, delta, sign)
		rec.MonthlyData = append(rec.MonthlyData, MonthBucket{Month: MonthKey(ev.Month), Totals: t})
	}

	if db := rec.dayBucket(ev.Day); db != nil {
		updateDelta(&db.Totals, ev, delta, sign)
	} else {
		var t Totals
		updateDelta(&t, ev, delta, sign)
		rec.DailyData = append(rec.DailyData, DayBucket{Day: ev.Day, Totals: t})
	}
}

// correctedDelete removes a bill's full contribution from one Totals
// scope: matching amount, matching bill count, and customer counts only
// when the bill belonged to a new customer.
func correctedDelete(t *Totals, ev BillEvent) {
	t.Income -= ev.AmountMinor
	t.Profit -= ev.AmountMinor
	if ev.BillType == BillStitched {
		t.Stitch -= ev.AmountMinor
		t.StitchBillCount--
	} else {
		t.Sales -= ev.AmountMinor
		t.SalesBillCount--
	}
	if ev.CustomerType == CustomerNew {
		t.Customers--
		t.NewCustomers--
	}
}

func applyDelete(rec *AnalyticsRecord, ev BillEvent, opts Options) {
	if !opts.LegacyDeleteQuirks {
		correctedDelete(&rec.Totals, ev)
		if mb := rec.monthBucket(MonthKey(ev.Month)); mb != nil {
			correctedDelete(&mb.Totals, ev)
		}
		if db := rec.dayBucket(ev.Day); db != nil {
			correctedDelete(&db.Totals, ev)
		}
		return
	}

	// Legacy year level: SOLD deletion moves the sales amount but not
	// the bill count, and customers drop for OLD customers too.
	rec.Income -= ev.AmountMinor
	rec.Profit -= ev.AmountMinor
	if ev.BillType == BillStitched {
		rec.Stitch -= ev.AmountMinor
		rec.StitchBillCount--
	} else {
		rec.Sales -= ev.AmountMinor
	}
	rec.Customers--

	// Legacy month level: STITCHED deletion decrements both bill
	// counts; SOLD deletion decrements neither.
	if mb := rec.monthBucket(MonthKey(ev.Month)); mb != nil {
		mb.Income -= ev.AmountMinor
		mb.Profit -= ev.AmountMinor
		mb.Customers--
		if ev.BillType == BillStitched {
			mb.Stitch -= ev.AmountMinor
			mb.SalesBillCount--
			mb.StitchBillCount--
		} else {
			mb.Sales -= ev.AmountMinor
		}
	}

	// Legacy day level: each bill type decrements its own count.
	if db := rec.dayBucket(ev.Day); db != nil {
		db.Income -= ev.AmountMinor
		db.Profit -= ev.AmountMinor
		db.Customers--
		if ev.BillType == BillStitched {
			db.Stitch -= ev.AmountMinor
			db.StitchBillCount--
		} else {
			db.Sales -= ev.AmountMinor
			db.SalesBillCount--
		}
	}
}
