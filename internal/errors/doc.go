// Package errors provides coded, actionable errors for the floaties
// server and CLI.
//
// Every code maps to a registered template:
//   - F1xx: configuration (floaties.json and flags)
//   - F2xx: runtime (listener, shutdown, client frames)
//   - F3xx: command line usage
//
// Config errors can point into the file that caused them:
//
//	err := errors.New("F102").
//	    WithOffset("floaties.json", data, syntaxErr.Offset).
//	    Wrap(syntaxErr)
//
//	errors.PrintError(os.Stderr, err)
//	// ERROR F102: Invalid config JSON
//	//
//	//   floaties.json:3:13
//	//
//	//        2 │   "name": "floaties",
//	//   →    3 │   "listen": ,
//	//          │             ^
//	//        4 │ }
package errors
