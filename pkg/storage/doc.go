// Package storage manages the flat folder downloaded assets are written to.
//
// The Manager works on an afero filesystem so tests can run against memory.
// File names are sanitized and made collision-safe without any locking:
//
//	manager := storage.NewManager(afero.NewOsFs(), "/data/images")
//	path, err := manager.BuildTargetPath("Old bridge-1910", "jpg")
//	if err != nil {
//	    return err
//	}
//	file, err := manager.Create(path)
//
// If "Old bridge-1910.jpg" already exists, BuildTargetPath returns a name with a
// UTC timestamp suffix such as "Old bridge-1910-20240102T030405.000000006Z.jpg".
// Names are kept within MaxFileNameBytes by shortening the base name.
package storage
