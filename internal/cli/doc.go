// Package cli implements the bing-wallpaper command line.
//
// Run is the whole program behind main: it parses flags, layers settings
// (file, environment, flags), runs the download manager and maps the result
// to an exit status. Everything it touches at the process boundary comes in
// through Env, so tests drive it with buffers and an httptest client.
//
//	status := cli.Run(ctx, os.Args[1:], cli.Env{
//	    Stdout:    os.Stdout,
//	    Stderr:    os.Stderr,
//	    LookupEnv: os.LookupEnv,
//	})
//	os.Exit(status)
package cli
