package limitxy

import (
	"gcode-postprocess/pkg/errors"
	"gcode-postprocess/pkg/gcode"
	"gcode-postprocess/pkg/log"
)

// Report describes the edits made by one Apply call.
type Report struct {
	Mode  Mode  `json:"mode"`
	Range Range `json:"range"`

	// OverrideBlocks lists the blocks that received an M201 override
	OverrideBlocks []int `json:"override_blocks"`
	// GradientValues holds the limit inserted into each override block (gradient mode)
	GradientValues []AxisPair `json:"gradient_values,omitempty"`
	GradientStep   AxisPair   `json:"gradient_step"`

	JerkLinesRewritten int `json:"jerk_lines_rewritten"`

	// RestoreBlock is the block holding the restore lines, or -1
	RestoreBlock int `json:"restore_block"`
}

// Annotator applies an acceleration/jerk override to a document.
type Annotator struct {
	opts     Options
	baseline Baseline
	jerk     JerkEditPolicy
	log      *log.Logger
}

// New creates an Annotator. Options outside their documented ranges are
// clamped with a warning rather than rejected; an unusable baseline is an
// error.
func New(opts Options, baseline Baseline, logger *log.Logger) (*Annotator, error) {
	if logger == nil {
		logger = log.GetLogger("limitxy")
	}
	if err := baseline.Validate(); err != nil {
		return nil, err
	}
	a := &Annotator{
		opts:     opts.sanitize(logger),
		baseline: baseline,
		log:      logger.With(log.Fields{"mode": opts.Mode().String()}),
	}
	if a.opts.JerkEnable {
		a.jerk = NewJerkEditPolicy(a.opts.XJerk, a.opts.YJerk)
		if a.jerk == nil {
			a.log.Warn("jerk enabled but both X_jerk and Y_jerk are 0; jerk lines left unchanged")
		}
	}
	if !baseline.AccelEnabled && !baseline.AccelTravelEnabled {
		a.log.Info("slicer acceleration control is disabled; firmware M201 limit still applies")
	}
	if a.jerk != nil && !baseline.JerkEnabled && !baseline.JerkTravelEnabled {
		a.log.Info("slicer jerk control is disabled; only M205 lines present in the file are rewritten")
	}
	return a, nil
}

// Options returns the effective (clamped) options.
func (a *Annotator) Options() Options {
	return a.opts
}

// OverrideLine is the M201 line for the requested limits.
func (a *Annotator) OverrideLine() string {
	return gcode.FormatAxes(gcode.AccelLimitCommand, a.opts.XAccelLimit, a.opts.YAccelLimit)
}

// RestoreLines are the M201 and M205 lines reinstating the slicer baseline.
func (a *Annotator) RestoreLines() []string {
	accel := pyRound(a.baseline.OldAccel())
	jerk := gcode.FormatNumber(a.baseline.OldJerk())
	return []string{
		gcode.FormatAxes(gcode.AccelLimitCommand, accel, accel),
		gcode.JerkCommand + " X" + jerk + " Y" + jerk,
	}
}

// Apply edits doc in place. Blocks are never added or removed.
func (a *Annotator) Apply(doc *gcode.Document) (*Report, error) {
	if doc.Len() < gcode.MinBlocks {
		return nil, errors.DocumentError("too few blocks")
	}

	startLayer, endLayer := a.opts.LayerSpan()
	r, startFound, endFound := ResolveRange(doc, startLayer, endLayer)
	a.log.WithFields(log.Fields{
		"start_layer": startLayer,
		"end_layer":   endLayer,
		"start_index": r.Start,
		"end_index":   r.End,
	}).Debug("range resolved")
	if !startFound {
		a.log.WithField("layer", startLayer).Warn("start layer not found; starting at first layer")
	}
	if endLayer > 0 && !endFound {
		a.log.WithField("layer", endLayer).Warn("end layer not found; ending at last layer")
	}

	report := &Report{Mode: a.opts.Mode(), Range: r, RestoreBlock: -1}
	if a.opts.GradientChange {
		if r.Spread() <= 0 {
			return nil, errors.DegenerateRangeError(r.Start, r.End)
		}
		a.applyGradient(doc, r, report)
	} else {
		if endLayer != ToEnd && r.Spread() <= 0 {
			a.log.WithFields(log.Fields{"start_index": r.Start, "end_index": r.End}).
				Warn("end layer is not after start layer; restore lands before the override")
		}
		a.applyConstant(doc, r, endLayer, report)
	}
	return report, nil
}

func (a *Annotator) applyConstant(doc *gcode.Document, r Range, endLayer int, report *Report) {
	a.insertOverride(doc, r.Start, a.OverrideLine(), true, report)
	a.rewriteJerk(doc, r.Start, r.End, report)

	restore := a.RestoreLines()
	if endLayer == ToEnd {
		a.prependTrailer(doc, restore, report)
		return
	}
	at := r.End - 1
	err := doc.EditBlock(at, func(l gcode.Lines) gcode.Lines {
		return l.InsertBeforeTail(2, restore...)
	})
	if err != nil {
		a.log.WithError(err).Warn("restore block missing; limits left in force")
		return
	}
	report.RestoreBlock = at
}

func (a *Annotator) applyGradient(doc *gcode.Document, r Range, report *Report) {
	step, values := Taper(a.baseline.OldAccel(), a.opts.Limit(), r.Spread())
	report.GradientStep = step
	report.GradientValues = values

	for i, v := range values {
		line := gcode.FormatAxes(gcode.AccelLimitCommand, v.X, v.Y)
		a.insertOverride(doc, r.Start+i, line, i == 0, report)
	}

	if a.jerk != nil {
		a.rewriteJerk(doc, r.Start, doc.TrailerIndex(), report)
		a.prependTrailer(doc, a.RestoreLines(), report)
	}
}

// insertOverride puts line (and the jerk override when withJerk) after the
// layer marker of block i.
func (a *Annotator) insertOverride(doc *gcode.Document, i int, line string, withJerk bool, report *Report) {
	insert := []string{line}
	if withJerk && a.jerk != nil {
		insert = append(insert, a.jerk.OverrideLine())
	}
	inserted := false
	err := doc.EditBlock(i, func(l gcode.Lines) gcode.Lines {
		l, inserted = l.InsertAfterMarker(insert...)
		return l
	})
	if err != nil || !inserted {
		a.log.WithField("block", i).Warn("no layer marker in block; override not inserted")
		return
	}
	report.OverrideBlocks = append(report.OverrideBlocks, i)
	a.log.WithFields(log.Fields{"block": i, "line": line}).Debug("override inserted")
}

// rewriteJerk rewrites the M205 lines of blocks [from, to).
func (a *Annotator) rewriteJerk(doc *gcode.Document, from, to int, report *Report) {
	if a.jerk == nil {
		return
	}
	for i := from; i < to; i++ {
		_ = doc.EditBlock(i, func(l gcode.Lines) gcode.Lines {
			l, n := l.ReplaceCommands(gcode.JerkCommand, a.jerk.Rewrite)
			report.JerkLinesRewritten += n
			return l
		})
	}
}

func (a *Annotator) prependTrailer(doc *gcode.Document, lines []string, report *Report) {
	t := doc.TrailerIndex()
	// an unterminated last layer would swallow the first restore line
	_ = doc.TerminateBlock(t - 1)
	_ = doc.EditBlock(t, func(l gcode.Lines) gcode.Lines {
		return l.Prepend(lines...)
	})
	report.RestoreBlock = t
}
