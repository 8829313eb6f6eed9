package solver

import (
	"fmt"
	"io"
	"log"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/store"
)

type MergeStats struct {
	XOnly   uint64
	YOnly   uint64
	Both    uint64
	Written uint64
}

// MergeTables streams the union of the X-win and O-win single-sided
// tables into a full table. Both inputs are sorted by state code, so a
// two-pointer walk suffices; fields combine by taking the non-zero value.
// The two label domains ({0,+1} and {0,-1}) must not overlap per phase —
// a state carrying a non-zero label for the same phase in both inputs is
// a collision and aborts the merge.
func MergeTables(xwinPath, ywinPath, outPath string) (MergeStats, error) {
	stats := MergeStats{}

	xin, err := store.OpenReader(xwinPath)
	if err != nil {
		return stats, err
	}
	defer xin.Close()
	yin, err := store.OpenReader(ywinPath)
	if err != nil {
		return stats, err
	}
	defer yin.Close()
	log.Printf("[merge] xwin records=%d ywin records=%d", xin.Count(), yin.Count())

	out, err := store.NewWriter(outPath)
	if err != nil {
		return stats, err
	}

	next := func(r *store.Reader) (store.Record, bool, error) {
		rec, err := r.Next()
		if err == io.EOF {
			return store.Record{}, false, nil
		}
		if err != nil {
			return store.Record{}, false, err
		}
		return rec, true, nil
	}

	xrec, xok, err := next(xin)
	if err != nil {
		return stats, err
	}
	yrec, yok, err := next(yin)
	if err != nil {
		return stats, err
	}

	for xok || yok {
		var current store.Record
		switch {
		case xok && (!yok || xrec.Code <= yrec.Code):
			current = xrec
			if yok && yrec.Code == current.Code {
				current, err = combine(current, yrec)
				if err != nil {
					return stats, err
				}
				stats.Both++
				if yrec, yok, err = next(yin); err != nil {
					return stats, err
				}
			} else {
				stats.XOnly++
			}
			if xrec, xok, err = next(xin); err != nil {
				return stats, err
			}
		default:
			current = yrec
			stats.YOnly++
			if yrec, yok, err = next(yin); err != nil {
				return stats, err
			}
		}
		if err := out.Write(current); err != nil {
			return stats, err
		}
		stats.Written++
		if stats.Written%1000000 == 0 {
			log.Printf("[merge] written=%d", stats.Written)
		}
	}

	if err := out.Close(); err != nil {
		return stats, err
	}
	log.Printf("[merge] done: xonly=%d yonly=%d both=%d total=%d",
		stats.XOnly, stats.YOnly, stats.Both, stats.Written)
	return stats, nil
}

func combine(a, b store.Record) (store.Record, error) {
	if a.DP0 != 0 && b.DP0 != 0 {
		return a, fmt.Errorf("label collision at state %d: dp0 %d vs %d", a.Code, a.DP0, b.DP0)
	}
	if a.DP1 != 0 && b.DP1 != 0 {
		return a, fmt.Errorf("label collision at state %d: dp1 %d vs %d", a.Code, a.DP1, b.DP1)
	}
	if a.DP0 == 0 {
		a.DP0 = b.DP0
	}
	if a.DP1 == 0 {
		a.DP1 = b.DP1
	}
	if a.Depth0 == 0 {
		a.Depth0 = b.Depth0
	}
	if a.Depth1 == 0 {
		a.Depth1 = b.Depth1
	}
	return a, nil
}
