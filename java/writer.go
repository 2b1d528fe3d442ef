package java

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/harrybrwn/pojogen/array"
	"github.com/harrybrwn/pojogen/stack"
)

// Writer emits one Java compilation unit. It keeps track of the indentation
// level, the active package, the stack of open classes and the import table.
//
// Write errors are sticky and reported by Flush. Unbalanced Push/Pop or
// Start/End calls are programming errors and panic.
type Writer struct {
	w       *bufio.Writer
	indent  string
	level   int
	methods int
	pkg     string
	classes stack.Stack[ClassName]

	// qualified name -> short name
	imports map[string]string
	// short name -> qualified name that owns it
	claimed map[string]string
	statics []string
	flushed bool
}

// ClassDecl describes the opening line of a class-like declaration.
type ClassDecl struct {
	Name       ClassName
	Kind       Kind
	Visibility Visibility
	Modifiers  []Modifier
	Extends    []ClassName
	Implements []ClassName
}

type Field struct {
	Visibility Visibility
	Modifiers  []Modifier
	Type       ClassName
	Name       string
	// Value is an optional initializer expression.
	Value string
}

type Param struct {
	Type ClassName
	Name string
}

type Method struct {
	Visibility Visibility
	Modifiers  []Modifier
	Returns    ClassName
	Name       string
	Params     []Param
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:       bufio.NewWriter(w),
		indent:  "\t",
		imports: make(map[string]string),
		claimed: make(map[string]string),
	}
}

// Flush writes any buffered output and returns the first write error.
func (w *Writer) Flush() error { return w.w.Flush() }

func (w *Writer) PushIndent() { w.level++ }

func (w *Writer) PopIndent() {
	if w.level == 0 {
		panic("java: PopIndent without matching PushIndent")
	}
	w.level--
}

func (w *Writer) WriteIndent() {
	for range w.level {
		w.w.WriteString(w.indent)
	}
}

// Write writes s verbatim.
func (w *Writer) Write(s string) {
	w.w.WriteString(s)
}

func (w *Writer) WriteEmptyLine() {
	w.w.WriteByte('\n')
}

// WriteCode writes each line at the current indentation.
func (w *Writer) WriteCode(lines ...string) {
	for _, line := range lines {
		if len(line) > 0 {
			w.WriteIndent()
			w.w.WriteString(line)
		}
		w.w.WriteByte('\n')
	}
}

func (w *Writer) WriteComment(lines ...string) {
	for _, line := range lines {
		w.WriteIndent()
		w.w.WriteString("// ")
		w.w.WriteString(line)
		w.w.WriteByte('\n')
	}
}

func (w *Writer) WriteJavadoc(lines ...string) {
	if len(lines) == 0 {
		return
	}
	w.beginDeclaration()
	lines = array.Map(lines, func(l string) string {
		return strings.ReplaceAll(l, "*/", "*&#47;")
	})
	if len(lines) == 1 {
		w.WriteCode("/** " + lines[0] + " */")
		return
	}
	w.WriteCode("/**")
	for _, line := range lines {
		w.WriteCode(strings.TrimRight(" * "+line, " "))
	}
	w.WriteCode(" */")
}

// WritePackage writes the package statement and remembers the package so
// that names inside it are never imported.
func (w *Writer) WritePackage(pkg string) {
	if len(pkg) > 0 {
		w.w.WriteString("package ")
		w.w.WriteString(pkg)
		w.w.WriteString(";\n")
	}
	w.pkg = pkg
}

func (w *Writer) Package() string { return w.pkg }

// RequestImport asks for name (and its type arguments) to be imported. Nothing
// is written until the first declaration begins. It reports whether the raw
// name can be used unqualified: the first name to claim a short name keeps
// it, later names with the same short name and any request made after the
// imports were written will be rendered fully qualified.
func (w *Writer) RequestImport(name ClassName) bool {
	ok := w.requestImport(name)
	for _, arg := range name.TypeArgs {
		w.RequestImport(arg)
	}
	return ok
}

func (w *Writer) requestImport(name ClassName) bool {
	q := name.Qualified()
	if len(name.Package) == 0 {
		return w.claimUnqualified(name.Raw)
	}
	if owner, ok := w.claimed[name.Raw]; ok {
		return owner == q
	}
	if name.Package == w.pkg || name.Package == ImplicitPackage {
		// always in scope, but claim the short name so an import cannot
		// shadow it
		w.claimed[name.Raw] = q
		return true
	}
	if w.flushed {
		return false
	}
	w.claimed[name.Raw] = q
	w.imports[q] = name.Raw
	return true
}

// claimUnqualified reserves raw for a name in the default package. Such a
// name has no qualified form, so it takes the short name back from a pending
// import or from java.lang.
func (w *Writer) claimUnqualified(raw string) bool {
	owner, ok := w.claimed[raw]
	switch {
	case !ok || owner == raw:
	case strings.HasPrefix(owner, ImplicitPackage+"."):
	case !w.flushed && len(w.imports[owner]) > 0:
		delete(w.imports, owner)
	default:
		return false
	}
	w.claimed[raw] = raw
	return true
}

// WriteStaticImport requests "import static name.member;".
func (w *Writer) WriteStaticImport(name ClassName, member string) bool {
	if w.flushed {
		return false
	}
	imp := name.Qualified() + "." + member
	if !slices.Contains(w.statics, imp) {
		w.statics = append(w.statics, imp)
	}
	return true
}

// ShortName returns the shortest form of name that is valid in this unit.
func (w *Writer) ShortName(name ClassName) string {
	var b strings.Builder
	if w.available(name) {
		b.WriteString(name.Raw)
	} else {
		b.WriteString(name.Qualified())
	}
	if len(name.TypeArgs) > 0 {
		b.WriteByte('<')
		b.WriteString(strings.Join(array.Map(name.TypeArgs, w.ShortName), ","))
		b.WriteByte('>')
	}
	return b.String()
}

func (w *Writer) available(name ClassName) bool {
	q := name.Qualified()
	if owner, ok := w.claimed[name.Raw]; ok {
		return owner == q
	}
	return len(name.Package) == 0 || name.Package == w.pkg || name.Package == ImplicitPackage
}

// Imports returns the qualified names that have been claimed for import, sorted.
func (w *Writer) Imports() []string {
	names := make([]string, 0, len(w.imports))
	for q := range w.imports {
		names = append(names, q)
	}
	slices.Sort(names)
	return names
}

func (w *Writer) flushImports() {
	if w.flushed {
		return
	}
	w.flushed = true
	imports := w.Imports()
	if len(imports) > 0 || len(w.statics) > 0 {
		w.WriteEmptyLine()
	}
	for _, q := range imports {
		w.w.WriteString("import ")
		w.w.WriteString(q)
		w.w.WriteString(";\n")
	}
	statics := slices.Sorted(slices.Values(w.statics))
	for _, s := range statics {
		w.w.WriteString("import static ")
		w.w.WriteString(s)
		w.w.WriteString(";\n")
	}
	w.WriteEmptyLine()
}

// beginDeclaration writes the imports ahead of the first top-level
// declaration.
func (w *Writer) beginDeclaration() {
	if w.classes.Empty() {
		w.flushImports()
	}
}

// StartClass opens a class-like declaration and pushes it onto the stack of
// open classes. Starting a class while another one is open declares a nested
// class.
func (w *Writer) StartClass(d ClassDecl) {
	for _, n := range array.Append(d.Extends, d.Implements) {
		w.RequestImport(n)
	}
	w.beginDeclaration()
	kind := d.Kind
	if len(kind) == 0 {
		kind = KindClass
	}
	w.WriteIndent()
	w.writeModifiers(d.Visibility, d.Modifiers)
	w.w.WriteString(string(kind))
	w.w.WriteByte(' ')
	w.w.WriteString(d.Name.Raw)
	if len(d.Extends) > 0 {
		w.w.WriteString(" extends ")
		w.writeNames(d.Extends)
	}
	if len(d.Implements) > 0 {
		w.w.WriteString(" implements ")
		w.writeNames(d.Implements)
	}
	w.w.WriteString(" {\n")
	w.PushIndent()
	w.classes.Push(d.Name)
}

func (w *Writer) EndClass() {
	if _, ok := w.classes.Pop(); !ok {
		panic("java: EndClass without matching StartClass")
	}
	w.PopIndent()
	w.WriteIndent()
	w.w.WriteString("}\n")
}

// CurrentClass returns the innermost open class.
func (w *Writer) CurrentClass() (ClassName, bool) {
	return w.classes.Peek()
}

func (w *Writer) WriteField(f Field) {
	w.WriteIndent()
	w.writeModifiers(f.Visibility, f.Modifiers)
	w.w.WriteString(w.ShortName(f.Type))
	w.w.WriteByte(' ')
	w.w.WriteString(f.Name)
	if len(f.Value) > 0 {
		w.w.WriteString(" = ")
		w.w.WriteString(f.Value)
	}
	w.w.WriteString(";\n")
}

func (w *Writer) StartMethod(m Method) {
	returns := m.Returns
	if returns.IsZero() {
		returns = Void
	}
	w.WriteIndent()
	w.writeModifiers(m.Visibility, m.Modifiers)
	w.w.WriteString(w.ShortName(returns))
	w.w.WriteByte(' ')
	w.writeSignature(m.Name, m.Params)
}

// StartConstructor opens a constructor for the innermost open class.
func (w *Writer) StartConstructor(visibility Visibility, params ...Param) {
	current, ok := w.CurrentClass()
	if !ok {
		panic("java: StartConstructor outside of a class")
	}
	w.WriteIndent()
	w.writeModifiers(visibility, nil)
	w.writeSignature(current.Raw, params)
}

func (w *Writer) EndMethod() {
	if w.methods == 0 {
		panic("java: EndMethod without matching StartMethod")
	}
	w.methods--
	w.PopIndent()
	w.WriteIndent()
	w.w.WriteString("}\n")
}

// WriteAnnotation writes "@Name" or "@Name(args...)" on its own line.
func (w *Writer) WriteAnnotation(name ClassName, args ...string) {
	w.RequestImport(name)
	w.beginDeclaration()
	w.WriteIndent()
	w.w.WriteByte('@')
	w.w.WriteString(w.ShortName(name))
	if len(args) > 0 {
		w.w.WriteByte('(')
		w.w.WriteString(strings.Join(args, ", "))
		w.w.WriteByte(')')
	}
	w.w.WriteByte('\n')
}

func (w *Writer) writeSignature(name string, params []Param) {
	w.w.WriteString(name)
	w.w.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			w.w.WriteString(", ")
		}
		w.w.WriteString(w.ShortName(p.Type))
		w.w.WriteByte(' ')
		w.w.WriteString(p.Name)
	}
	w.w.WriteString(") {\n")
	w.methods++
	w.PushIndent()
}

func (w *Writer) writeModifiers(v Visibility, mods []Modifier) {
	if len(v) > 0 {
		w.w.WriteString(string(v))
		w.w.WriteByte(' ')
	}
	for _, m := range mods {
		w.w.WriteString(string(m))
		w.w.WriteByte(' ')
	}
}

func (w *Writer) writeNames(names []ClassName) {
	w.w.WriteString(strings.Join(array.Map(names, w.ShortName), ", "))
}
