// Provides platform-appropriate paths for the daemon.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS. The name "purple-ghost" is used as the subdirectory under each
// base path. The configuration file is the one exception: a config.yaml in
// the working directory takes precedence, which is how the container image
// ships its configuration.
package paths
