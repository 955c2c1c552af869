package core

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"text/template"
)

var expandFuncs = template.FuncMap{
	// env reads an environment variable, empty if unset.
	"env": os.Getenv,
	// exec runs a command and returns its trimmed stdout. Lines containing
	// a pipe are run through sh.
	"exec": func(line string) (string, error) {
		var cmd *exec.Cmd
		if strings.Contains(line, " | ") {
			cmd = exec.Command("sh", "-c", line)
		} else {
			fields := strings.Fields(line)
			if len(fields) < 1 {
				return "", errors.New("no command provided")
			}
			cmd = exec.Command(fields[0], fields[1:]...)
		}

		out, err := cmd.Output()
		return strings.TrimSpace(string(out)), err
	},
}

// expand renders value as a text/template, so a url such as
//
//	http://{{ env "CH_USER" }}:{{ exec "pass show clickhouse" }}@localhost:8123
//
// never has to hold the credentials itself.
func expand(value string) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("expand_variables").Funcs(expandFuncs).Parse(value)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, nil); err != nil {
		return "", err
	}

	return out.String(), nil
}

// expandOrDefault silently suppresses errors.
func expandOrDefault(value string) string {
	ex, err := expand(value)
	if err != nil {
		return value
	}
	return ex
}
