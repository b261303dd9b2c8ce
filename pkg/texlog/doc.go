// Package texlog parses the transcript written by a TeX engine (pdfTeX, XeTeX, LuaTeX)
// into an ordered list of diagnostics.
//
// The transcript is first rebuilt into logical lines (TeX hard-wraps its output at
// max_print_line columns), then read front to back while a stack of parenthesised
// file markers tracks which source file is being typeset. Each line is offered to a
// fixed list of classifiers; the first one that matches consumes the line and any
// continuation it owns.
//
//	diags := texlog.Parse(text)
//	for _, d := range texlog.Filter(diags, texlog.LevelWarning) {
//		fmt.Println(d.Location(), d.Message)
//	}
package texlog
