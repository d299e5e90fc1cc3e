package driver

import (
	"cstar/internal/diag"
	"cstar/internal/pipeline"
	"cstar/internal/source"
)

// Increment when Summary changes shape.
const summarySchemaVersion uint16 = 1

// Summary is what a check leaves behind once the AST and IR are gone:
// enough to print the same diagnostics and states again.
type Summary struct {
	Schema          uint16              `msgpack:"schema"`
	Path            string              `msgpack:"path"`
	Errors          int                 `msgpack:"errors"`
	Diagnostics     []SummaryDiagnostic `msgpack:"diagnostics"`
	States          []SummaryState      `msgpack:"states"`
	Structs         []string            `msgpack:"structs"`
	Funcs           []string            `msgpack:"funcs"`
	Specializations int                 `msgpack:"specializations"`
}

type SummaryDiagnostic struct {
	Severity uint8         `msgpack:"sev"`
	Code     uint16        `msgpack:"code"`
	Message  string        `msgpack:"msg"`
	Decl     string        `msgpack:"decl,omitempty"`
	Span     SummarySpan   `msgpack:"span"`
	Notes    []SummaryNote `msgpack:"notes,omitempty"`
}

type SummaryNote struct {
	Span    SummarySpan `msgpack:"span"`
	Message string      `msgpack:"msg"`
}

// SummarySpan stores the file by path; FileIDs do not survive a run.
type SummarySpan struct {
	File      string `msgpack:"file,omitempty"`
	StartLine uint32 `msgpack:"sl"`
	StartCol  uint32 `msgpack:"sc"`
	EndLine   uint32 `msgpack:"el"`
	EndCol    uint32 `msgpack:"ec"`
}

type SummaryState struct {
	Decl      string   `msgpack:"decl"`
	State     string   `msgpack:"state"`
	Stage     string   `msgpack:"stage,omitempty"`
	BlockedBy []string `msgpack:"blocked_by,omitempty"`
}

// Summarize condenses a pipeline result.
func Summarize(path string, res *pipeline.Result) *Summary {
	s := &Summary{Schema: summarySchemaVersion, Path: path, Errors: res.Errors}
	fs := res.Program.Files
	for _, d := range res.Bag.Items() {
		sd := SummaryDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Decl:     d.Decl,
			Span:     toSummarySpan(fs, d.Primary),
		}
		for _, n := range d.Notes {
			sd.Notes = append(sd.Notes, SummaryNote{Span: toSummarySpan(fs, n.Span), Message: n.Msg})
		}
		s.Diagnostics = append(s.Diagnostics, sd)
	}
	for _, st := range res.States {
		s.States = append(s.States, SummaryState{
			Decl:      st.Decl.DeclName(),
			State:     st.State.String(),
			Stage:     string(st.Stage),
			BlockedBy: st.BlockedBy,
		})
	}
	if res.IR != nil {
		for _, st := range res.IR.Structs {
			s.Structs = append(s.Structs, st.Name)
		}
		for _, fn := range res.IR.Funcs {
			s.Funcs = append(s.Funcs, fn.Name)
		}
	}
	if res.Specializations != nil {
		s.Specializations = res.Specializations.Len()
	}
	return s
}

func toSummarySpan(fs *source.FileSet, sp source.Span) SummarySpan {
	if sp.Empty() {
		return SummarySpan{}
	}
	return SummarySpan{
		File:      fs.Path(sp.File),
		StartLine: sp.Start.Line,
		StartCol:  sp.Start.Col,
		EndLine:   sp.End.Line,
		EndCol:    sp.End.Col,
	}
}

// Restore rebuilds a diagnostics bag and the file set its spans refer to.
func (s *Summary) Restore() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	for _, sd := range s.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(sd.Severity),
			Code:     diag.Code(sd.Code),
			Message:  sd.Message,
			Decl:     sd.Decl,
			Primary:  fromSummarySpan(fs, sd.Span),
		}
		for _, n := range sd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: fromSummarySpan(fs, n.Span), Msg: n.Message})
		}
		bag.Add(d)
	}
	return bag, fs
}

func fromSummarySpan(fs *source.FileSet, sp SummarySpan) source.Span {
	if sp.StartLine == 0 {
		return source.Span{}
	}
	return source.Span{
		File:  fs.Add(sp.File),
		Start: source.LineCol{Line: sp.StartLine, Col: sp.StartCol},
		End:   source.LineCol{Line: sp.EndLine, Col: sp.EndCol},
	}
}

// OK reports whether the summarized check had no error diagnostics.
func (s *Summary) OK() bool { return s.Errors == 0 }
