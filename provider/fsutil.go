package provider

import "os"

func statExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func homeDir() (string, error) {
	return os.UserHomeDir()
}
