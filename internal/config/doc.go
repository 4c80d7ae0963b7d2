// Package config provides configuration management for bing-wallpaper.
//
// Settings are layered, each layer overriding the previous one:
//
//  1. DefaultSettings: latest image, 1920x1080, current directory
//  2. A JSON settings file (Load), by default DefaultPath()
//  3. .env / .env.local files (LoadDotEnv) and BING_WALLPAPER_* variables (ApplyEnv)
//  4. Command-line flags set explicitly by the user
//
// # Loading
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	if err := settings.ApplyEnv(os.LookupEnv); err != nil {
//	    return err
//	}
//	settings.Normalize()
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// # Resolutions
//
// Only 1920x1200, 1920x1080, 800x480 and 400x240 are served upstream.
// Resolution implements pflag.Value so the flag parser rejects anything else.
package config
