package core

type (
	CategoryAmount struct {
		CategoryID int64
		Name       string
		Amount     Money
	}

	PersonAmount struct {
		Person string
		Amount Money
	}

	// DayTotal buckets a single calendar day for the calendar view.
	DayTotal struct {
		Day     int
		Expense Money
		Income  Money
		Count   int
	}

	// MonthOverview aggregates a resolved month for the summary and chart
	// consumers.
	MonthOverview struct {
		Year       int
		Month      int
		Income     Money
		Expense    Money
		Net        Money
		Savings    Money
		ByCategory []CategoryAmount
		ByPerson   []PersonAmount
		Calendar   []DayTotal
	}

	// MonthSchedule is the display-ready result of expanding and resolving
	// all templates over one calendar month.
	MonthSchedule struct {
		Year      int
		Month     int
		Instances []Instance
		Overview  MonthOverview
	}
)

// Summarize aggregates resolved instances into a MonthOverview. Only
// occurrences dated inside the month count: base instances of recurring
// templates are skipped (their dated occurrence is already present) and
// out-of-month pass-through instances are ignored. categoryNames maps
// category IDs to display names; unknown IDs aggregate under an empty name.
func Summarize(year, month int, instances []Instance, categoryNames map[int64]string) MonthOverview {
	ov := MonthOverview{Year: year, Month: month}

	byCat := map[int64]int64{}
	catOrder := make([]int64, 0)
	byPerson := map[string]int64{}
	personOrder := make([]string, 0)
	byDay := map[int]*DayTotal{}

	for _, inst := range instances {
		if inst.Recurring && !inst.RecurringInstance {
			continue
		}
		d := inst.InstanceDate
		if d.Year() != year || int(d.Month()) != month {
			continue
		}

		signed := inst.Signed().Cents
		if inst.IsExpense {
			ov.Expense.Cents += inst.Amount.Cents
		} else {
			ov.Income.Cents += inst.Amount.Cents
		}
		ov.Net.Cents += signed

		if inst.IsExpense {
			if _, seen := byCat[inst.CategoryID]; !seen {
				catOrder = append(catOrder, inst.CategoryID)
			}
			byCat[inst.CategoryID] += inst.Amount.Cents
		}

		if _, seen := byPerson[inst.Person]; !seen {
			personOrder = append(personOrder, inst.Person)
		}
		byPerson[inst.Person] += signed

		day := d.Day()
		dt, ok := byDay[day]
		if !ok {
			dt = &DayTotal{Day: day}
			byDay[day] = dt
		}
		if inst.IsExpense {
			dt.Expense.Cents += inst.Amount.Cents
		} else {
			dt.Income.Cents += inst.Amount.Cents
		}
		dt.Count++
	}

	for _, id := range catOrder {
		ov.ByCategory = append(ov.ByCategory, CategoryAmount{
			CategoryID: id,
			Name:       categoryNames[id],
			Amount:     Money{Cents: byCat[id]},
		})
	}
	for _, p := range personOrder {
		ov.ByPerson = append(ov.ByPerson, PersonAmount{Person: p, Amount: Money{Cents: byPerson[p]}})
	}

	for day := 1; day <= 31; day++ {
		if dt, ok := byDay[day]; ok {
			ov.Calendar = append(ov.Calendar, *dt)
		}
	}

	return ov
}
