// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/devblok/trigon/utility/kar"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil && u.Name != "" {
		currentUserName = u.Name
	}
}

var currentUserName string

var (
	author   = flag.String("author", "", "Set the author of the package when compressing")
	version  = flag.Int64("version", 1, "Archive version number to create it with")
	extract  = flag.String("e", "", "Extract the file given")
	compress = flag.String("c", "", "Compress the given file/folder")
	dstFile  = flag.String("f", "out.kar", "Destination file")
	dstDir   = flag.String("o", ".", "Destination directory when extracting")
	silent   = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	if *extract != "" && *compress != "" {
		log.Fatal("only one operation at a time")
	}

	switch {
	case *extract != "":
		if err := extractFiles(*extract, *dstDir); err != nil {
			log.WithError(err).Fatal("extraction failed")
		}
	case *compress != "":
		if err := compressFiles(*compress, *dstFile); err != nil {
			log.WithError(err).Fatal("compression failed")
		}
	default:
		flag.PrintDefaults()
	}
}

func compressFiles(src, dstPath string) error {
	if _, err := os.Stat(dstPath); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walking %s", src)
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})

	for _, ftc := range filesToCompress {
		entry, err := entryName(src, ftc)
		if err != nil {
			return err
		}
		f, err := os.Open(ftc)
		if err != nil {
			return err
		}
		err = karBuilder.Add(entry, f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "adding %s", ftc)
		}
		log.WithField("file", entry).Info("added")
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if _, err := karBuilder.WriteTo(dst); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return errors.Wrapf(err, "writing %s", dstPath)
	}
	log.WithFields(log.Fields{
		"archive": dstPath,
		"files":   karBuilder.Len(),
	}).Info("archive written")
	return dst.Close()
}

// entryName stores files relative to the compressed folder, with
// forward slashes. A single compressed file keeps its base name.
func entryName(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	if rel == "." {
		rel = filepath.Base(path)
	}
	return filepath.ToSlash(rel), nil
}

func extractFiles(src, dir string) error {
	r, err := mmap.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return err
	}

	header := archive.Header()
	log.WithFields(log.Fields{
		"author":  header.Author,
		"version": header.Version,
		"created": time.Unix(header.DateCreated, 0).Format(time.RFC3339),
	}).Info("opened archive")

	for _, name := range header.Names() {
		target, err := extractPath(dir, name)
		if err != nil {
			return err
		}
		data, err := archive.ReadAll(name)
		if err != nil {
			return errors.Wrapf(err, "reading %s", name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := ioutil.WriteFile(target, data, 0644); err != nil {
			return err
		}
		log.WithField("file", target).Info("extracted")
	}
	return nil
}

// extractPath resolves an archive entry below dir and refuses entries
// that would land outside of it.
func extractPath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("entry %q escapes %s", name, dir)
	}
	return target, nil
}
