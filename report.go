package canary

// 表形式の描画は外部の関心事。ここでは行の列挙だけを提供する。

// ConciseRow is one row of the per-direction summary view.
type ConciseRow struct {
	Direction string
	OK        bool
	Value     float64
}

const (
	StageComputed = "computed"
	StageDerived  = "derived"
)

// FullRow is one row of the debugging view: every raw and derived estimate
// with its provenance.
type FullRow struct {
	Direction string
	Stage     string
	Source    string
	Size      float64
	Value     float64
}

func (d Derivative) ConciseRows() []ConciseRow {
	rows := make([]ConciseRow, len(d.Directionals))
	for i, dd := range d.Directionals {
		rows[i] = ConciseRow{
			Direction: dd.Direction.Name,
			OK:        dd.OK,
			Value:     dd.Value,
		}
	}
	return rows
}

func (d Derivative) FullRows() []FullRow {
	var rows []FullRow
	for _, dd := range d.Directionals {
		for _, e := range dd.Computed {
			rows = append(rows, FullRow{
				Direction: dd.Direction.Name,
				Stage:     StageComputed,
				Source:    e.Source,
				Size:      e.Size,
				Value:     e.Value,
			})
		}
		for _, e := range dd.Derived {
			rows = append(rows, FullRow{
				Direction: dd.Direction.Name,
				Stage:     StageDerived,
				Source:    e.Source,
				Size:      e.Size,
				Value:     e.Value,
			})
		}
	}
	return rows
}
