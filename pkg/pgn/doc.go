// Package pgn streams game records in Portable Game Notation.
//
// Only what is needed to group games by starting position and score them is
// decoded: the tag pairs and the game termination marker. Movetext is kept raw.
//
//	err := pgn.WalkFile("games.pgn", func(g pgn.Game) error {
//	    fen, _ := g.TagValue("FEN")
//	    fmt.Println(fen, g.Termination)
//	    return nil
//	})
//
// Returning an error from the callback stops the walk and is returned as is.
package pgn
