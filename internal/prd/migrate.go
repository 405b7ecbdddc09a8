package prd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// LatestSchemaVersion is the newest prd.json schema this build understands.
const LatestSchemaVersion = "2.2"

// NeedsMigration reports whether the document at path uses an older schema.
func NeedsMigration(path string) (bool, error) {
	raw, err := readRaw(path)
	if err != nil {
		return false, err
	}
	version := "1.0"
	if v, ok := raw["schemaVersion"].(string); ok && v != "" {
		version = v
	}
	return version != LatestSchemaVersion, nil
}

// CheckAndMigrate upgrades an older prd.json to the latest schema. When
// interactive is true the user is asked (on in/out) whether to migrate and
// whether pause-between-stories should be enabled; otherwise migration is
// applied silently with pause disabled. Unknown fields are preserved.
// Returns true when the file was rewritten.
func CheckAndMigrate(path string, interactive bool, in io.Reader, out io.Writer) (bool, error) {
	needed, err := NeedsMigration(path)
	if err != nil {
		return false, err
	}
	if !needed {
		return false, nil
	}

	raw, err := readRaw(path)
	if err != nil {
		return false, err
	}

	pause := false
	if interactive {
		current := "1.0"
		if v, ok := raw["schemaVersion"].(string); ok && v != "" {
			current = v
		}
		fmt.Fprintf(out, "\nprd.json uses schema %s; latest is %s.\n", current, LatestSchemaVersion)
		fmt.Fprintf(out, "New in %s: pauseBetweenStories keeps the agent session open after each story.\n\n", LatestSchemaVersion)

		// One buffered reader for both questions; a fresh one per question
		// would read ahead and drop the second answer.
		r := bufio.NewReader(in)
		if !askYesNo(r, out, "Upgrade now?", true) {
			fmt.Fprintln(out, "Keeping existing schema.")
			return false, nil
		}
		pause = askYesNo(r, out, "Pause between stories?", false)
	}

	raw["schemaVersion"] = LatestSchemaVersion
	raw["pauseBetweenStories"] = pause

	updated, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode migrated prd.json: %w", err)
	}
	if err := os.WriteFile(path, append(updated, '\n'), 0o644); err != nil {
		return false, fmt.Errorf("write migrated prd.json: %w", err)
	}
	return true, nil
}

func readRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prd.json: %w", err)
	}
	return raw, nil
}

func askYesNo(in *bufio.Reader, out io.Writer, prompt string, def bool) bool {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s: ", prompt, hint)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}
