// Package board is a small rotating-chess engine: pieces with free positions
// and orientations, pointer-driven selection, and a navigable history of
// board snapshots.
//
// It is the engine collaborator the session package drives. Handle is the
// checked entry point for local input and reports at most one effect per
// input; ApplyMove and ApplyRotate are the unchecked entry points used for
// effects a remote peer already validated. Movement rules are intentionally
// minimal: any live piece may go to any on-board point not held by a piece of
// its own side, and lands as a capture when an opposing piece is within
// PieceRadius.
//
// The board does not know which side a peer plays. Turn ownership, held by
// the session, decides who may act, and the acting peer may pick up a piece
// of either color, as over a shared physical board.
//
// Coordinates are board units: the board spans [0, Size) on both axes and
// square centers sit at n+0.5. No on-board coordinate is ever outside that
// range, which is what lets callers use a far off-board point to synthesize
// a deselecting click.
package board
