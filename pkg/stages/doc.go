// Package stages defines the installation chain.
//
// Each stage is a stage.Definition registered in chain order under its
// progress marker, with a short alias for the command line:
//
//	01-partitions-ready      partitions   live media, root
//	02-base-installed        base         live media, root
//	03-system-configured     configure    chroot, root
//	04-desktop-installed     desktop      installed system, root
//	05-aur-helper-installed  aur-helper   installed system, user
//	06-packages-installed    packages     installed system, user
//
// Stages talk to each other only through the session store keys declared
// here and through the progress markers.
package stages
