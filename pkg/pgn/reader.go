package pgn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// maxLineSize bounds a single line; engine matches can put a whole game on one.
const maxLineSize = 4 << 20

// ErrMalformedTag is returned for a line that starts like a tag pair but is not one.
var ErrMalformedTag = errors.New("malformed tag pair")

var tagPairRegex = regexp.MustCompile(`^\[\s*([A-Za-z0-9_]+)\s+"((?:[^"\\]|\\.)*)"\s*\]$`)

// WalkFile opens path and calls [Walk] on it.
func WalkFile(path string, onGame func(Game) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return Walk(file, onGame)
}

// Walk reads games from r one at a time and passes each to onGame.
// A record ends at a tag line following movetext, or at a blank line once the
// movetext carries its termination marker.
func Walk(r io.Reader, onGame func(Game) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		game    Game
		body    strings.Builder
		hasBody bool
		inBrace bool
		lineNo  int
	)

	flush := func() error {
		if len(game.Tags) == 0 && body.Len() == 0 {
			return nil
		}
		game.Movetext = strings.TrimSpace(body.String())
		game.Termination = termination(game)
		err := onGame(game)
		game = Game{}
		body.Reset()
		hasBody = false
		inBrace = false
		return err
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		switch {
		case line == "":
			// A blank line after a finished movetext also ends the record, so
			// games without a tag section stay apart.
			if hasBody {
				if _, ok := ParseTermination(lastToken(body.String())); ok {
					if err := flush(); err != nil {
						return err
					}
				}
			}
		case strings.HasPrefix(line, "%") && !inBrace:
			continue
		case strings.HasPrefix(line, "[") && !inBrace:
			if hasBody {
				if err := flush(); err != nil {
					return err
				}
			}
			tag, err := parseTag(line)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			if len(game.Tags) == 0 {
				game.Line = lineNo
			}
			game.Tags = append(game.Tags, tag)
		default:
			// Rest-of-line comments would swallow the following lines once joined.
			line, inBrace = stripLineComment(line, inBrace)
			if !hasBody && len(game.Tags) == 0 {
				game.Line = lineNo
			}
			hasBody = true
			body.WriteString(line)
			body.WriteString(" ")
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}

// stripLineComment cuts a ";" comment off line. inBrace reports whether line
// starts inside a brace comment, where ";" is plain text; the returned flag
// carries that state to the next line.
func stripLineComment(line string, inBrace bool) (string, bool) {
	for i, r := range line {
		switch {
		case inBrace:
			if r == '}' {
				inBrace = false
			}
		case r == '{':
			inBrace = true
		case r == ';':
			return line[:i], false
		}
	}
	return line, inBrace
}

func parseTag(line string) (Tag, error) {
	m := tagPairRegex.FindStringSubmatch(line)
	if m == nil {
		return Tag{}, fmt.Errorf("%w: %q", ErrMalformedTag, line)
	}
	value := strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(m[2])
	return Tag{Key: m[1], Value: value}, nil
}

// termination reads the marker that ends the movetext, falling back to the
// Result tag for records without movetext.
func termination(g Game) Termination {
	if tok := lastToken(g.Movetext); tok != "" {
		if t, ok := ParseTermination(tok); ok {
			return t
		}
	}
	if res, ok := g.TagValue("Result"); ok {
		if t, ok := ParseTermination(res); ok {
			return t
		}
	}
	return Unknown
}

// lastToken returns the final whitespace-separated token outside of comments
// and variations.
func lastToken(movetext string) string {
	var (
		depth, braces int
		token, last   strings.Builder
	)
	commit := func() {
		if token.Len() > 0 {
			last.Reset()
			last.WriteString(token.String())
			token.Reset()
		}
	}
	for _, r := range movetext {
		switch {
		case braces > 0:
			if r == '}' {
				braces--
			}
		case r == '{':
			commit()
			braces++
		case r == '(':
			commit()
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case r == ' ' || r == '\t':
			commit()
		default:
			token.WriteRune(r)
		}
	}
	commit()
	return last.String()
}
