package domain

type FormField struct {
	Name  string
	Value string
}

// FormFields keeps multipart value fields in the order they are sent.
type FormFields []FormField

func (f FormFields) Get(name string) string {
	for _, field := range f {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

type FileField struct {
	FieldName string
	Upload
}

type Multipart struct {
	Fields FormFields
	File   *FileField
}
