package ports

type InputListPort interface {
	ReadNames(path string) ([]string, error)
}
