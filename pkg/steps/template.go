package steps

import (
	"bytes"
	"fmt"
	"runtime"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/buildsteps/pkg/build"
)

var platformNames = map[string]string{
	"linux/386":     "Linux-x86",
	"linux/amd64":   "Linux-x64",
	"linux/arm":     "Linux-ARM",
	"linux/arm64":   "Linux-ARM",
	"windows/386":   "Windows-x86",
	"windows/amd64": "Windows-x64",
	"darwin/386":    "Mac-x86",
	"darwin/amd64":  "Mac-x64",
	"darwin/arm64":  "Mac-ARM",
}

// DefaultPlatform maps a GOOS/GOARCH pair to a platform identifier such as
// "Linux-x64". Unknown pairs return "".
func DefaultPlatform(goos, goarch string) string {
	return platformNames[goos+"/"+goarch]
}

func funcMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["defaultPlatform"] = func() string { return DefaultPlatform(runtime.GOOS, runtime.GOARCH) }
	return fm
}

// text is a parsed template string.
type text struct {
	src  string
	tmpl *template.Template
}

func parseText(name, src string) (text, error) {
	tmpl, err := template.New(name).Funcs(funcMap()).Parse(src)
	if err != nil {
		return text{}, fmt.Errorf("parsing template %q: %w", src, err)
	}
	return text{src: src, tmpl: tmpl}, nil
}

func parseTexts(name string, srcs []string) ([]text, error) {
	out := make([]text, 0, len(srcs))
	for _, s := range srcs {
		t, err := parseText(name, s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (t text) render(data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", t.src, err)
	}
	return buf.String(), nil
}

func renderAll(texts []text, data map[string]any) ([]string, error) {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		s, err := t.render(data)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// templateData exposes the run state to templates as .env, .options,
// .configureArgs and .runID.
func templateData(bc *build.Context) map[string]any {
	return map[string]any{
		"env":           bc.Env.Snapshot(),
		"options":       bc.Options.Map(),
		"configureArgs": append([]string(nil), bc.ConfigureArgs...),
		"runID":         bc.RunID,
	}
}
