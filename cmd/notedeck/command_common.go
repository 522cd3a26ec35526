package main

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/types"
)

const version = "dev"

func printNotes(output io.Writer, list []*types.Note, withStatus bool) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	header := "ID\tTITLE\tSUBJECT\tCOURSE\tSEM\tCOLLEGE\tLIKES\tDOWNLOADS\tCREATED"
	if withStatus {
		header += "\tSTATUS\tUPLOADER"
	}
	fmt.Fprintln(writer, header)
	for _, note := range list {
		if note == nil {
			continue
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s",
			note.ID,
			sanitizer.Line(note.Title),
			dash(note.SubjectName),
			dash(note.CourseName),
			dash(note.Semester),
			dash(note.CollegeName),
			len(note.Likes),
			humanize.Comma(int64(note.DownloadCount)),
			relativeTime(note.CreatedAt),
		)
		if withStatus {
			row += "\t" + reviewStatus(note) + "\t" + dash(note.UploaderName())
		}
		fmt.Fprintln(writer, row)
	}
	_ = writer.Flush()
}

func printNote(output io.Writer, note *types.Note) {
	if note == nil {
		return
	}
	fmt.Fprintf(output, "%s\n", sanitizer.Line(note.Title))
	meta := []string{}
	for _, part := range []string{note.SubjectName, note.CourseName, semesterLabel(note.Semester), note.CollegeName, note.Batch} {
		if part = strings.TrimSpace(sanitizer.Line(part)); part != "" {
			meta = append(meta, part)
		}
	}
	if len(meta) > 0 {
		fmt.Fprintf(output, "%s\n", strings.Join(meta, " • "))
	}
	fmt.Fprintf(output, "%d likes • %s downloads • uploaded %s\n",
		len(note.Likes), humanize.Comma(int64(note.DownloadCount)), relativeTime(note.CreatedAt))
	if note.FileURL != "" {
		fmt.Fprintf(output, "file: %s\n", sanitizer.Line(note.FileURL))
	}
	if desc := strings.TrimSpace(sanitizer.Block(note.Description)); desc != "" {
		fmt.Fprintf(output, "\n%s\n", desc)
	}
	fmt.Fprintf(output, "\n%s\n", commentCount(len(note.Comments)))
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	for _, comment := range note.Comments {
		author := sanitizer.Line(comment.Username)
		if author == "" {
			author = types.AnonymousUsername
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", author, relativeTime(comment.CommentedAt), sanitizer.Line(comment.Text))
	}
	_ = writer.Flush()
}

func commentCount(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return fmt.Sprintf("%d comments", n)
}

func semesterLabel(semester string) string {
	if strings.TrimSpace(semester) == "" {
		return ""
	}
	return "Sem " + semester
}

func reviewStatus(note *types.Note) string {
	if note.Approved {
		return string(types.ReviewStatusApproved)
	}
	return string(types.ReviewStatusPending)
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func dash(value string) string {
	value = sanitizer.Line(value)
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func requireArg(fsArgs []string, name string) (string, error) {
	if len(fsArgs) == 0 || strings.TrimSpace(fsArgs[0]) == "" {
		return "", usagef("%s is required", name)
	}
	return strings.TrimSpace(fsArgs[0]), nil
}

// usageError marks a bad invocation rather than a failed operation.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func isUsageError(err error) bool {
	var target usageError
	return errors.As(err, &target)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
