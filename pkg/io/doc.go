// Package io reads and writes the files of an opening book analysis.
//
// # CSV Outputs
//
// [WriteOpeningStats] writes one row per opening, keyed by the piece placement
// field of its FEN, with the game count and the outcome proportions:
//
//	FEN,total,white_win,draw,black_win
//	rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR,3,0.6666666666666666,0.3333333333333333,0
//
// [WriteDistribution] writes the distinct outcome triples as "w-d-b" proportions
// with the number of openings that produced them:
//
//	WDB,Count
//	0.5-0.5-0,12
//
// # CSV Inputs
//
// [ReadSamples] accepts either raw counts (white_win,draw,black_win, with an
// optional header) or a file produced by [WriteOpeningStats], from which the
// counts are recovered by rounding total × proportion.
//
// # JSON
//
// [WriteAnalysisJSON] and [ReadAnalysisJSON] round-trip an [opening.Analysis]:
//
//	{
//	  "alpha": [5.06, 3.04, 2.12],
//	  "iterations": 454,
//	  "converged": true,
//	  "games": 60000,
//	  "openings": [{"fen": "...", "white_wins": 30, "draws": 18, "black_wins": 12}]
//	}
package io
