package payslip

// SetRenderPDFFunc replaces the PDF renderer until the returned func is called.
func SetRenderPDFFunc(fn func(Payslip) ([]byte, error)) (restore func()) {
	orig := renderPDFFunc
	renderPDFFunc = fn
	return func() { renderPDFFunc = orig }
}
