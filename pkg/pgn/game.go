package pgn

// Termination is the outcome recorded at the end of a game's movetext.
type Termination int

const (
	// Unknown means no termination marker and no Result tag was found.
	Unknown Termination = iota
	WhiteWins
	Draw
	BlackWins
	// Unterminated is the "*" marker: game in progress, abandoned or unknown.
	Unterminated
)

var terminationMarkers = map[string]Termination{
	"1-0":     WhiteWins,
	"1/2-1/2": Draw,
	"0-1":     BlackWins,
	"*":       Unterminated,
}

// ParseTermination maps a PGN result token to a Termination.
func ParseTermination(s string) (Termination, bool) {
	t, ok := terminationMarkers[s]
	return t, ok
}

// Decisive reports whether the termination is one of the three scored outcomes.
func (t Termination) Decisive() bool {
	return t == WhiteWins || t == Draw || t == BlackWins
}

func (t Termination) String() string {
	switch t {
	case WhiteWins:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case BlackWins:
		return "0-1"
	case Unterminated:
		return "*"
	default:
		return "unknown"
	}
}

// Tag is a single tag pair such as [Event "Test"].
type Tag struct {
	Key   string
	Value string
}

// Game is one record: its tag section, raw movetext and termination.
type Game struct {
	Tags        []Tag
	Movetext    string
	Termination Termination
	Line        int // line number of the first tag
}

// TagValue returns the value of the first tag named key.
func (g Game) TagValue(key string) (string, bool) {
	for _, tag := range g.Tags {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

// TagValues returns the values of every tag named key, in order.
func (g Game) TagValues(key string) []string {
	var values []string
	for _, tag := range g.Tags {
		if tag.Key == key {
			values = append(values, tag.Value)
		}
	}
	return values
}
